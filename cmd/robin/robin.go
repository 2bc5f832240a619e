package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/xlab/treeprint"

	"github.com/ziord/robin"
	"github.com/ziord/robin/dom"
	"github.com/ziord/robin/s11n"
	"github.com/ziord/robin/xpath"
)

type cmdopts struct {
	HTML    bool   `long:"html" description:"parse input as HTML"`
	Query   string `long:"query" short:"q" description:"evaluate an XPath expression against each document"`
	Tree    bool   `long:"tree" description:"print the parsed tree"`
	Format  bool   `long:"format" description:"re-render the parsed document"`
	Version bool   `long:"version" description:"print the version"`
}

func main() {
	os.Exit(_main())
}

func showUsage() {
	fmt.Printf(`Usage : robin [options] files ...
	Parse the given markup files; optionally evaluate a query or
	re-render the parse result.
`)
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		showUsage()
		return 1
	}

	if opts.Version {
		fmt.Printf("robin version %s\n", robin.Version)
		return 0
	}

	if len(args) == 0 {
		showUsage()
		return 1
	}

	for _, f := range args {
		data, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", f, err)
			return 1
		}
		mode := dom.ModeXML
		if opts.HTML {
			mode = dom.ModeHTML
		}
		doc, err := robin.ParseBytes(data, mode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", f, err)
			return 1
		}
		if err := process(&opts, doc); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", f, err)
			return 1
		}
	}
	return 0
}

func process(opts *cmdopts, doc *dom.Root) error {
	if opts.Query != "" {
		v, err := robin.Query(doc, opts.Query)
		if err != nil {
			return err
		}
		return printValue(v)
	}
	if opts.Tree {
		printTree(doc)
		return nil
	}
	if opts.Format {
		d := s11n.Dumper{}
		s, err := d.DumpToString(doc)
		if err != nil {
			return err
		}
		fmt.Println(s)
	}
	return nil
}

func printValue(v xpath.Value) error {
	ns, ok := v.(xpath.NodeSet)
	if !ok {
		switch t := v.(type) {
		case xpath.Number:
			fmt.Println(float64(t))
		case xpath.String:
			fmt.Println(string(t))
		case xpath.Boolean:
			fmt.Println(bool(t))
		}
		return nil
	}
	d := s11n.Dumper{}
	nodes := append([]dom.Node(nil), ns...)
	dom.SortDocumentOrder(nodes)
	for _, n := range nodes {
		s, err := d.DumpToString(n)
		if err != nil {
			return err
		}
		fmt.Println(s)
	}
	return nil
}

func printTree(doc *dom.Root) {
	root := treeprint.New()
	root.SetValue(doc.Name())
	var add func(branch treeprint.Tree, n dom.Node)
	add = func(branch treeprint.Tree, n dom.Node) {
		switch t := n.(type) {
		case *dom.Element:
			b := branch.AddBranch(t.QualifiedName())
			for _, a := range t.Attributes() {
				b.AddNode("@" + a.QualifiedName() + "=" + a.Value())
			}
			for _, c := range t.Children() {
				add(b, c)
			}
		case *dom.Text:
			branch.AddNode(fmt.Sprintf("%q", t.Content()))
		case *dom.Comment:
			branch.AddNode("<!--" + t.Content() + "-->")
		case *dom.ProcessingInstruction:
			branch.AddNode("<?" + t.Target() + "?>")
		case *dom.DTD:
			branch.AddNode("<!DOCTYPE>")
		case *dom.XMLDecl:
			branch.AddNode("<?xml?>")
		}
	}
	for _, c := range doc.Children() {
		add(root, c)
	}
	fmt.Print(root.String())
}
