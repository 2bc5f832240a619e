// Package robin is a non-validating XML/HTML parser with a companion
// XPath 1.0 engine. Parse ingests markup and yields a document tree;
// Query evaluates an XPath expression against that tree and returns a
// number, string, boolean, or node set referencing the original tree.
package robin

import (
	"github.com/pkg/errors"

	"github.com/ziord/robin/dom"
	"github.com/ziord/robin/encoding"
	"github.com/ziord/robin/xpath"
)

const Version = "1.0.0"

// Parse parses markup in strict XML mode. The input is assumed to be
// UTF-8; use ParseBytes for charset-sniffed input.
func Parse(markup string, options ...ParseOption) (*dom.Root, error) {
	return parse([]byte(markup), dom.ModeXML, options...)
}

// ParseHTML parses markup in the tolerant HTML dialect.
func ParseHTML(markup string, options ...ParseOption) (*dom.Root, error) {
	return parse([]byte(markup), dom.ModeHTML, options...)
}

// ParseBytes sniffs the input's encoding from its BOM or first bytes,
// transcodes to UTF-8 when needed, and parses in the given mode.
func ParseBytes(data []byte, mode dom.Mode, options ...ParseOption) (*dom.Root, error) {
	name, bomLen, err := encoding.Detect(data)
	if err == nil && name != "" {
		enc := encoding.Load(name)
		if enc == nil {
			return nil, errors.Errorf("encoding '%s' not supported", name)
		}
		data, err = enc.NewDecoder().Bytes(data[bomLen:])
		if err != nil {
			return nil, errors.Wrap(err, "failed to transcode input")
		}
	}
	return parse(data, mode, options...)
}

func parse(data []byte, mode dom.Mode, options ...ParseOption) (*dom.Root, error) {
	cfg := defaultParseConfig()
	cfg.apply(options...)
	ctx := newParserCtx(data, mode, cfg)
	var doc *dom.Root
	var err error
	if mode == dom.ModeHTML {
		doc, err = ctx.parseDocumentHTML()
	} else {
		doc, err = ctx.parseDocument()
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Warnings returns the diagnostics a parse collected. Only populated
// when WithShowWarnings is on (the default).
func (w *ParseResult) Warnings() []Warning { return w.warnings }

// ParseResult pairs a parsed tree with its non-fatal diagnostics.
type ParseResult struct {
	Root     *dom.Root
	warnings []Warning
}

// ParseWithWarnings is Parse plus the warning list.
func ParseWithWarnings(markup string, options ...ParseOption) (*ParseResult, error) {
	cfg := defaultParseConfig()
	cfg.apply(options...)
	ctx := newParserCtx([]byte(markup), dom.ModeXML, cfg)
	doc, err := ctx.parseDocument()
	if err != nil {
		return nil, err
	}
	return &ParseResult{Root: doc, warnings: ctx.warnings}, nil
}

// Query evaluates an XPath 1.0 expression against a parsed tree.
func Query(root *dom.Root, query string) (xpath.Value, error) {
	return xpath.Query(root, query)
}

// QueryOne returns the first node of a node-set result in document
// order, or nil for an empty set. Scalar results come back as their
// Go value (float64, string, bool).
func QueryOne(root *dom.Root, query string) (interface{}, error) {
	v, err := xpath.Query(root, query)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case xpath.NodeSet:
		if len(t) == 0 {
			return nil, nil
		}
		nodes := append([]dom.Node(nil), t...)
		dom.SortDocumentOrder(nodes)
		return nodes[0], nil
	case xpath.Number:
		return float64(t), nil
	case xpath.String:
		return string(t), nil
	case xpath.Boolean:
		return bool(t), nil
	}
	return nil, errors.Errorf("unexpected value kind %T", v)
}

// QueryAll returns a node-set result as a document-ordered slice. A
// scalar result is an error; use Query for those.
func QueryAll(root *dom.Root, query string) ([]dom.Node, error) {
	v, err := xpath.Query(root, query)
	if err != nil {
		return nil, err
	}
	ns, ok := v.(xpath.NodeSet)
	if !ok {
		return nil, errors.Errorf("query yields %s, not a node-set", v.Kind())
	}
	nodes := append([]dom.Node(nil), ns...)
	dom.SortDocumentOrder(nodes)
	return nodes, nil
}
