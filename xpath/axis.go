package xpath

import "github.com/ziord/robin/dom"

// enumerateAxis yields an axis's candidates from a context node in
// the axis's natural order: document order for forward axes, nearest
// first for reverse ones.
func enumerateAxis(axis Axis, ctx dom.Node) []dom.Node {
	switch axis {
	case AxisSelf:
		return []dom.Node{ctx}
	case AxisParent:
		if p := ctx.Parent(); p != nil {
			return []dom.Node{p}
		}
		return nil
	case AxisChild:
		if p, ok := ctx.(dom.ParentNode); ok {
			return append([]dom.Node(nil), p.Children()...)
		}
		return nil
	case AxisDescendant:
		return descendants(ctx, nil)
	case AxisDescendantOrSelf:
		return descendants(ctx, []dom.Node{ctx})
	case AxisAncestor:
		return ancestors(ctx, nil)
	case AxisAncestorOrSelf:
		return ancestors(ctx, []dom.Node{ctx})
	case AxisFollowingSibling:
		return siblings(ctx, true)
	case AxisPrecedingSibling:
		return siblings(ctx, false)
	case AxisFollowing:
		return following(ctx)
	case AxisPreceding:
		return preceding(ctx)
	case AxisAttribute:
		if e, ok := ctx.(*dom.Element); ok {
			attrs := e.Attributes()
			out := make([]dom.Node, len(attrs))
			for i, a := range attrs {
				out[i] = a
			}
			return out
		}
		return nil
	case AxisNamespace:
		if e, ok := ctx.(*dom.Element); ok {
			decls := e.InScopeNamespaces()
			out := make([]dom.Node, len(decls))
			for i, ns := range decls {
				out[i] = ns
			}
			return out
		}
		return nil
	}
	return nil
}

func descendants(n dom.Node, acc []dom.Node) []dom.Node {
	if p, ok := n.(dom.ParentNode); ok {
		for _, c := range p.Children() {
			acc = append(acc, c)
			acc = descendants(c, acc)
		}
	}
	return acc
}

// ancestors runs from the parent to the root, root included, nearest
// first.
func ancestors(n dom.Node, acc []dom.Node) []dom.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		acc = append(acc, p)
	}
	return acc
}

// siblings collects the context's siblings: those after it in order,
// or those before it nearest first. Attribute and namespace nodes
// have no siblings.
func siblings(n dom.Node, forward bool) []dom.Node {
	switch n.Type() {
	case dom.AttributeNode, dom.NamespaceNode:
		return nil
	}
	p, ok := n.Parent().(dom.ParentNode)
	if !ok {
		return nil
	}
	kids := p.Children()
	i := n.Index()
	if i < 0 || i >= len(kids) || kids[i] != n {
		return nil
	}
	var out []dom.Node
	if forward {
		out = append(out, kids[i+1:]...)
	} else {
		for j := i - 1; j >= 0; j-- {
			out = append(out, kids[j])
		}
	}
	return out
}

// treeRoot walks up to the owning root container.
func treeRoot(n dom.Node) dom.Node {
	cur := n
	for p := cur.Parent(); p != nil; p = p.Parent() {
		cur = p
	}
	return cur
}

// following: every node after the context in document order that is
// not a descendant of it, attributes and namespaces excluded. From an
// attribute the enumeration starts at the owner's first child, which
// the position ordering yields naturally.
func following(ctx dom.Node) []dom.Node {
	var out []dom.Node
	pos := ctx.Position()
	_ = dom.Walk(treeRoot(ctx), func(n dom.Node) error {
		if n.Position() > pos && n != ctx && !dom.IsAncestorOf(ctx, n) {
			out = append(out, n)
		}
		return nil
	})
	return out
}

// preceding: every node before the context in document order that is
// not one of its ancestors, nearest first.
func preceding(ctx dom.Node) []dom.Node {
	var out []dom.Node
	pos := ctx.Position()
	_ = dom.Walk(treeRoot(ctx), func(n dom.Node) error {
		if n.Position() < pos && n != ctx && !dom.IsAncestorOf(n, ctx) && n.Type() != dom.RootNode {
			out = append(out, n)
		}
		return nil
	})
	// walk order is document order; reverse for the axis's origin
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// matchTest applies a step's node test to one candidate. ctx is the
// context node; prefixed name tests resolve through the namespaces in
// scope at it (see resolveTestPrefix).
func matchTest(test *NodeTest, n dom.Node, axis Axis, ctx dom.Node) bool {
	if test == nil {
		return true
	}
	switch test.Kind {
	case TestNode:
		return true
	case TestText:
		return n.Type() == dom.TextNode
	case TestComment:
		return n.Type() == dom.CommentNode
	case TestPI:
		pi, ok := n.(*dom.ProcessingInstruction)
		if !ok {
			return false
		}
		return test.Target == "" || pi.Target() == test.Target
	}

	// name tests match the axis's principal node type
	switch axis {
	case AxisAttribute:
		a, ok := n.(*dom.Attribute)
		if !ok {
			return false
		}
		switch test.Kind {
		case TestWildcard:
			return true
		case TestName:
			return a.QualifiedName() == test.Local
		case TestPrefixWildcard:
			uri := resolveTestPrefix(test.Prefix, ctx)
			return uri != "" && a.Namespace() != nil && a.Namespace().URI() == uri
		case TestPrefixLocal:
			uri := resolveTestPrefix(test.Prefix, ctx)
			return uri != "" && a.Namespace() != nil && a.Namespace().URI() == uri && a.LocalName() == test.Local
		}
		return false
	case AxisNamespace:
		ns, ok := n.(*dom.Namespace)
		if !ok {
			return false
		}
		switch test.Kind {
		case TestWildcard:
			return true
		case TestName:
			return ns.Prefix() == test.Local
		}
		return false
	default:
		e, ok := n.(*dom.Element)
		if !ok {
			return false
		}
		switch test.Kind {
		case TestWildcard:
			return true
		case TestName:
			return e.QualifiedName() == test.Local
		case TestPrefixWildcard:
			uri := resolveTestPrefix(test.Prefix, ctx)
			return uri != "" && e.Namespace() != nil && e.Namespace().URI() == uri
		case TestPrefixLocal:
			uri := resolveTestPrefix(test.Prefix, ctx)
			return uri != "" && e.Namespace() != nil && e.Namespace().URI() == uri && e.LocalName() == test.Local
		}
		return false
	}
}

// resolveTestPrefix maps a name-test prefix to a URI through the
// context element's in-scope namespaces.
func resolveTestPrefix(prefix string, ctx dom.Node) string {
	var e *dom.Element
	switch t := ctx.(type) {
	case *dom.Element:
		e = t
	default:
		if owner := dom.OwnerElement(ctx); owner != nil {
			e = owner
		} else if p, ok := ctx.Parent().(*dom.Element); ok {
			e = p
		}
	}
	if e == nil {
		return ""
	}
	if ns := e.LookupNamespace(prefix); ns != nil {
		return ns.URI()
	}
	if prefix == "xml" {
		return dom.XMLNamespaceURI
	}
	return ""
}

// selectAxis runs the axis enumerator and the node test for one
// context node, in the axis's natural order.
func selectAxis(step *Step, ctx dom.Node) []dom.Node {
	var out []dom.Node
	for _, n := range enumerateAxis(step.Axis, ctx) {
		if matchTest(step.Test, n, step.Axis, ctx) {
			out = append(out, n)
		}
	}
	return out
}
