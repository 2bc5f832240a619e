// Package s11n renders a document tree back to markup. It is the
// serialization hook for the tree model: an external visitor over the
// node kinds, in the spirit of a DOM dumper.
package s11n

import (
	"io"
	"strings"

	"github.com/ziord/robin/dom"
)

type Dumper struct{}

// DumpToString renders a node to a string.
func (d *Dumper) DumpToString(n dom.Node) (string, error) {
	var sb strings.Builder
	if err := d.DumpNode(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// DumpNode renders a node and its descendants.
func (d *Dumper) DumpNode(out io.Writer, n dom.Node) error {
	switch t := n.(type) {
	case *dom.Root:
		return d.dumpRoot(out, t)
	case *dom.Element:
		return d.dumpElement(out, t)
	case *dom.Text:
		return d.dumpText(out, t)
	case *dom.Comment:
		_, err := io.WriteString(out, "<!--"+t.Content()+"-->")
		return err
	case *dom.ProcessingInstruction:
		return d.dumpPI(out, t)
	case *dom.DTD:
		return d.dumpDTD(out, t)
	case *dom.XMLDecl:
		return d.dumpXMLDecl(out, t)
	case *dom.Attribute:
		_, err := io.WriteString(out, t.QualifiedName()+`="`+escapeAttr(t.Value())+`"`)
		return err
	case *dom.Namespace:
		_, err := io.WriteString(out, nsDecl(t))
		return err
	}
	return dom.ErrNilNode
}

func (d *Dumper) dumpRoot(out io.Writer, r *dom.Root) error {
	for _, c := range r.Children() {
		if err := d.DumpNode(out, c); err != nil {
			return err
		}
	}
	return nil
}

func nsDecl(ns *dom.Namespace) string {
	if ns.Prefix() == "" {
		return `xmlns="` + escapeAttr(ns.URI()) + `"`
	}
	return "xmlns:" + ns.Prefix() + `="` + escapeAttr(ns.URI()) + `"`
}

func (d *Dumper) dumpElement(out io.Writer, e *dom.Element) error {
	if _, err := io.WriteString(out, "<"+e.QualifiedName()); err != nil {
		return err
	}
	for _, ns := range e.Namespaces() {
		if _, err := io.WriteString(out, " "+nsDecl(ns)); err != nil {
			return err
		}
	}
	for _, a := range e.Attributes() {
		if _, err := io.WriteString(out, " "+a.QualifiedName()+`="`+escapeAttr(a.Value())+`"`); err != nil {
			return err
		}
	}

	if len(e.Children()) == 0 {
		if e.Mode() == dom.ModeHTML {
			if e.IsVoid() {
				_, err := io.WriteString(out, ">")
				return err
			}
			_, err := io.WriteString(out, "></"+e.QualifiedName()+">")
			return err
		}
		// childless XML elements collapse
		_, err := io.WriteString(out, "/>")
		return err
	}

	if _, err := io.WriteString(out, ">"); err != nil {
		return err
	}
	for _, c := range e.Children() {
		if err := d.DumpNode(out, c); err != nil {
			return err
		}
	}
	_, err := io.WriteString(out, "</"+e.QualifiedName()+">")
	return err
}

func (d *Dumper) dumpText(out io.Writer, t *dom.Text) error {
	if t.IsCData() {
		_, err := io.WriteString(out, "<![CDATA["+t.Content()+"]]>")
		return err
	}
	if t.HasEntity() {
		// raw lexeme already carries its entities
		_, err := io.WriteString(out, t.Content())
		return err
	}
	_, err := io.WriteString(out, escapeText(t.Content()))
	return err
}

func (d *Dumper) dumpPI(out io.Writer, pi *dom.ProcessingInstruction) error {
	if pi.Value() == "" {
		_, err := io.WriteString(out, "<?"+pi.Target()+"?>")
		return err
	}
	_, err := io.WriteString(out, "<?"+pi.Target()+" "+pi.Value()+"?>")
	return err
}

func (d *Dumper) dumpDTD(out io.Writer, dtd *dom.DTD) error {
	v := dtd.Value()
	if strings.HasPrefix(v, "<!DOCTYPE") {
		// full structure was preserved at parse time
		_, err := io.WriteString(out, v)
		return err
	}
	_, err := io.WriteString(out, "<!DOCTYPE "+v+">")
	return err
}

func (d *Dumper) dumpXMLDecl(out io.Writer, x *dom.XMLDecl) error {
	if _, err := io.WriteString(out, "<?xml"); err != nil {
		return err
	}
	for _, a := range x.Attributes() {
		if _, err := io.WriteString(out, " "+a.QualifiedName()+`="`+escapeAttr(a.Value())+`"`); err != nil {
			return err
		}
	}
	_, err := io.WriteString(out, "?>")
	return err
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Attribute values are stored as lexed, entities included, so '&' is
// left alone; only the quote and '<' need protection.
var attrEscaper = strings.NewReplacer(
	"<", "&lt;",
	`"`, "&quot;",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
