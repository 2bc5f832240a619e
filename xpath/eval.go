package xpath

import (
	"math"

	"github.com/ziord/robin/dom"
	"github.com/ziord/robin/internal/stack"
)

// contextFrame is one evaluation context: the node, its position
// within the partition being iterated, and the partition size.
type contextFrame struct {
	pos  int
	size int
	node dom.Node
}

// evaluator walks the AST with two stacks: a data stack of values and
// a context stack of frames. Both are local to one Evaluate call;
// concurrent queries over one immutable tree are safe.
type evaluator struct {
	root dom.Node
	data stack.Stack[Value]
	ctxs stack.Stack[contextFrame]
}

// Expression is a compiled query, reusable across documents.
type Expression struct {
	ast Expr
}

// Compile parses a query string into a reusable expression.
func Compile(query string) (*Expression, error) {
	ast, err := parseQuery(query)
	if err != nil {
		return nil, err
	}
	return &Expression{ast: ast}, nil
}

// Evaluate runs the expression against a tree and returns its value.
func (e *Expression) Evaluate(root dom.Node) (Value, error) {
	if root == nil {
		return nil, evalErrorf("nil context node")
	}
	ev := &evaluator{root: root}
	ev.ctxs.Push(contextFrame{pos: 1, size: 1, node: root})
	if err := ev.visit(e.ast); err != nil {
		return nil, err
	}
	result, ok := ev.data.Pop()
	if !ok {
		return nil, evalErrorf("computation stack empty at end of query")
	}
	if ev.data.Len() != 0 {
		return nil, evalErrorf("computation stack not empty at end of query")
	}
	if ns, ok := result.(NodeSet); ok {
		result = ns.sorted()
	}
	return result, nil
}

// Query compiles and evaluates in one call.
func Query(root dom.Node, query string) (Value, error) {
	e, err := Compile(query)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(root)
}

func (ev *evaluator) context() contextFrame {
	f, _ := ev.ctxs.Peek()
	return f
}

func (ev *evaluator) visit(expr Expr) error {
	switch t := expr.(type) {
	case *NumberLit:
		ev.data.Push(Number(t.Value))
		return nil
	case *StringLit:
		ev.data.Push(String(t.Value))
		return nil
	case *FunctionCall:
		return ev.visitCall(t)
	case *UnaryOp:
		return ev.visitUnary(t)
	case *BinaryOp:
		return ev.visitBinary(t)
	case *Path:
		return ev.visitPath(t)
	case *Step:
		return ev.visitPath(&Path{Steps: []Expr{t}})
	case *Predicate:
		return ev.visitFilterPredicate(t)
	}
	return evalErrorf("unhandled expression node %T", expr)
}

// evalValue runs a subexpression and pops its result.
func (ev *evaluator) evalValue(expr Expr) (Value, error) {
	if err := ev.visit(expr); err != nil {
		return nil, err
	}
	v, ok := ev.data.Pop()
	if !ok {
		return nil, evalErrorf("expression produced no value")
	}
	return v, nil
}

// visitPath evaluates a step sequence. Each step consumes the node
// set left by the previous one.
func (ev *evaluator) visitPath(p *Path) error {
	var input NodeSet
	for i, s := range p.Steps {
		step, ok := s.(*Step)
		if !ok {
			// filter-expression head
			v, err := ev.evalValue(s)
			if err != nil {
				return err
			}
			ns, ok := v.(NodeSet)
			if !ok {
				if len(p.Steps) == 1 {
					ev.data.Push(v)
					return nil
				}
				return evalErrorf("path step applied to %s, need a node-set", v.Kind())
			}
			input = ns.sorted()
			continue
		}
		if i == 0 {
			if step.Path != PathNil {
				input = NodeSet{ev.root}
			} else {
				input = NodeSet{ev.context().node}
			}
		}
		out, err := ev.evalStep(step, input)
		if err != nil {
			return err
		}
		input = out
	}
	ev.data.Push(input.sorted())
	return nil
}

// evalStep runs the axis enumerator for every context node, keeping
// one partition per input node so that predicates can see
// position() relative to their own context.
func (ev *evaluator) evalStep(step *Step, input NodeSet) (NodeSet, error) {
	parts := make([]NodeSet, 0, len(input))
	for _, cn := range input {
		parts = append(parts, selectAxis(step, cn))
	}
	for _, pred := range step.Predicates {
		var err error
		parts, err = ev.applyPredicate(pred, parts)
		if err != nil {
			return nil, err
		}
	}
	var out NodeSet
	for _, part := range parts {
		out = append(out, part...)
	}
	return out.sorted(), nil
}

// applyPredicate filters each partition separately, iterating in the
// axis's own order with size = partition size and pos counting from
// the axis's origin.
func (ev *evaluator) applyPredicate(pred *Predicate, parts []NodeSet) ([]NodeSet, error) {
	out := make([]NodeSet, 0, len(parts))
	for _, part := range parts {
		kept, err := ev.filterPartition(pred, part)
		if err != nil {
			return nil, err
		}
		out = append(out, kept)
	}
	return out, nil
}

// filterPartition reorders the partition to document order, reversed
// when the predicate's axis runs against it, so that position()
// counts from the axis's origin.
func (ev *evaluator) filterPartition(pred *Predicate, part NodeSet) (NodeSet, error) {
	part = append(NodeSet(nil), part...)
	dom.SortDocumentOrder([]dom.Node(part))
	if pred.Reverse {
		for i, j := 0, len(part)-1; i < j; i, j = i+1, j-1 {
			part[i], part[j] = part[j], part[i]
		}
	}
	var kept NodeSet
	size := len(part)
	for i, n := range part {
		ev.ctxs.Push(contextFrame{pos: i + 1, size: size, node: n})
		v, err := ev.evalValue(pred.Expr)
		ev.ctxs.Pop()
		if err != nil {
			return nil, err
		}
		if predicateTrue(v, i+1) {
			kept = append(kept, n)
		}
	}
	return kept, nil
}

// predicateTrue applies the predicate conversion rule: a number is
// true iff it equals the current position, everything else coerces to
// boolean.
func predicateTrue(v Value, pos int) bool {
	if n, ok := v.(Number); ok {
		return float64(n) == float64(pos)
	}
	return toBoolean(v)
}

// visitFilterPredicate handles (expr)[pred]: the parenthesized
// expression is flattened into a single partition, so position()
// counts globally across it.
func (ev *evaluator) visitFilterPredicate(p *Predicate) error {
	v, err := ev.evalValue(p.Left)
	if err != nil {
		return err
	}
	ns, ok := v.(NodeSet)
	if !ok {
		return evalErrorf("predicate applied to %s, need a node-set", v.Kind())
	}
	part := ns.sorted()
	kept, err := ev.filterPartition(p, part)
	if err != nil {
		return err
	}
	ev.data.Push(kept)
	return nil
}

func (ev *evaluator) visitUnary(u *UnaryOp) error {
	v, err := ev.evalValue(u.Operand)
	if err != nil {
		return err
	}
	n := toNumber(v)
	if u.Op == tokMinus {
		n = -n
	}
	ev.data.Push(Number(n))
	return nil
}

func (ev *evaluator) visitBinary(b *BinaryOp) error {
	// and/or must not evaluate the right side when the left decides
	switch b.Op {
	case tokAnd, tokOr:
		l, err := ev.evalValue(b.Left)
		if err != nil {
			return err
		}
		lb := toBoolean(l)
		if (b.Op == tokAnd && !lb) || (b.Op == tokOr && lb) {
			ev.data.Push(Boolean(lb))
			return nil
		}
		r, err := ev.evalValue(b.Right)
		if err != nil {
			return err
		}
		ev.data.Push(Boolean(toBoolean(r)))
		return nil
	}

	l, err := ev.evalValue(b.Left)
	if err != nil {
		return err
	}
	r, err := ev.evalValue(b.Right)
	if err != nil {
		return err
	}

	switch b.Op {
	case tokUnion:
		ln, lok := l.(NodeSet)
		rn, rok := r.(NodeSet)
		if !lok || !rok {
			return evalErrorf("union requires node-sets, got %s and %s", l.Kind(), r.Kind())
		}
		ev.data.Push(append(append(NodeSet{}, ln...), rn...).sorted())
		return nil
	case tokEq, tokNeq, tokLt, tokLe, tokGt, tokGe:
		ok, err := compare(b.Op, l, r)
		if err != nil {
			return err
		}
		ev.data.Push(Boolean(ok))
		return nil
	case tokPlus:
		ev.data.Push(Number(toNumber(l) + toNumber(r)))
		return nil
	case tokMinus:
		ev.data.Push(Number(toNumber(l) - toNumber(r)))
		return nil
	case tokStar:
		ev.data.Push(Number(toNumber(l) * toNumber(r)))
		return nil
	case tokDiv:
		// IEEE division: x/0 is a signed infinity, 0/0 is NaN
		ev.data.Push(Number(toNumber(l) / toNumber(r)))
		return nil
	case tokMod:
		ev.data.Push(Number(math.Mod(toNumber(l), toNumber(r))))
		return nil
	}
	return evalErrorf("unhandled binary operator %s", b.Op)
}

func (ev *evaluator) visitCall(c *FunctionCall) error {
	def, ok := coreFunctions[c.Name]
	if !ok {
		return evalErrorf("unknown function '%s'", c.Name)
	}
	if len(c.Args) < def.minArgs || (def.maxArgs >= 0 && len(c.Args) > def.maxArgs) {
		return evalErrorf("function '%s' called with %d argument(s)", c.Name, len(c.Args))
	}
	args := make([]Value, 0, len(c.Args))
	for _, a := range c.Args {
		v, err := ev.evalValue(a)
		if err != nil {
			return err
		}
		args = append(args, v)
	}
	result, err := def.fn(ev, args)
	if err != nil {
		return err
	}
	ev.data.Push(result)
	return nil
}
