package xpath

import (
	"math"
	"strings"

	"github.com/ziord/robin/dom"
)

// funcDef is one library entry. maxArgs of -1 marks a variadic tail.
// Argument counts are checked at dispatch, before evaluation of the
// call.
type funcDef struct {
	minArgs int
	maxArgs int
	fn      func(*evaluator, []Value) (Value, error)
}

var coreFunctions map[string]funcDef

func init() {
	coreFunctions = map[string]funcDef{
		// node-set
		"last":          {0, 0, fnLast},
		"position":      {0, 0, fnPosition},
		"count":         {1, 1, fnCount},
		"local-name":    {0, 1, fnLocalName},
		"namespace-uri": {0, 1, fnNamespaceURI},
		"name":          {0, 1, fnName},

		// boolean
		"boolean": {1, 1, fnBoolean},
		"not":     {1, 1, fnNot},
		"true":    {0, 0, fnTrue},
		"false":   {0, 0, fnFalse},
		"lang":    {1, 1, fnLang},

		// number
		"number":  {0, 1, fnNumber},
		"sum":     {1, 1, fnSum},
		"floor":   {1, 1, fnFloor},
		"ceiling": {1, 1, fnCeiling},
		"round":   {1, 1, fnRound},

		// string
		"string":           {0, 1, fnString},
		"concat":           {2, -1, fnConcat},
		"starts-with":      {2, 2, fnStartsWith},
		"contains":         {2, 2, fnContains},
		"substring-before": {2, 2, fnSubstringBefore},
		"substring-after":  {2, 2, fnSubstringAfter},
		"substring":        {2, 3, fnSubstring},
		"string-length":    {0, 1, fnStringLength},
		"normalize-space":  {0, 1, fnNormalizeSpace},
		"translate":        {3, 3, fnTranslate},
	}
}

// contextNodeSet is the default for the optional node-set argument of
// local-name, namespace-uri and name: a one-node set of the context
// node.
func (ev *evaluator) contextNodeSet(args []Value) (NodeSet, error) {
	if len(args) == 0 {
		return NodeSet{ev.context().node}, nil
	}
	ns, ok := args[0].(NodeSet)
	if !ok {
		return nil, evalErrorf("argument is %s, need a node-set", args[0].Kind())
	}
	return ns, nil
}

func fnLast(ev *evaluator, _ []Value) (Value, error) {
	return Number(ev.context().size), nil
}

func fnPosition(ev *evaluator, _ []Value) (Value, error) {
	return Number(ev.context().pos), nil
}

func fnCount(_ *evaluator, args []Value) (Value, error) {
	ns, ok := args[0].(NodeSet)
	if !ok {
		return nil, evalErrorf("count of %s, need a node-set", args[0].Kind())
	}
	return Number(len(ns)), nil
}

func fnLocalName(ev *evaluator, args []Value) (Value, error) {
	ns, err := ev.contextNodeSet(args)
	if err != nil {
		return nil, err
	}
	switch t := ns.first().(type) {
	case *dom.Element:
		return String(t.LocalName()), nil
	case *dom.Attribute:
		return String(t.LocalName()), nil
	case *dom.ProcessingInstruction:
		return String(t.Target()), nil
	case *dom.Namespace:
		return String(t.Prefix()), nil
	}
	return String(""), nil
}

func fnNamespaceURI(ev *evaluator, args []Value) (Value, error) {
	ns, err := ev.contextNodeSet(args)
	if err != nil {
		return nil, err
	}
	switch t := ns.first().(type) {
	case *dom.Element:
		if t.Namespace() != nil {
			return String(t.Namespace().URI()), nil
		}
	case *dom.Attribute:
		if t.Namespace() != nil {
			return String(t.Namespace().URI()), nil
		}
	}
	return String(""), nil
}

func fnName(ev *evaluator, args []Value) (Value, error) {
	ns, err := ev.contextNodeSet(args)
	if err != nil {
		return nil, err
	}
	switch t := ns.first().(type) {
	case *dom.Element:
		return String(t.QualifiedName()), nil
	case *dom.Attribute:
		return String(t.QualifiedName()), nil
	case *dom.ProcessingInstruction:
		return String(t.Target()), nil
	case *dom.Namespace:
		return String(t.Prefix()), nil
	}
	return String(""), nil
}

func fnBoolean(_ *evaluator, args []Value) (Value, error) {
	return Boolean(toBoolean(args[0])), nil
}

func fnNot(_ *evaluator, args []Value) (Value, error) {
	return Boolean(!toBoolean(args[0])), nil
}

func fnTrue(_ *evaluator, _ []Value) (Value, error) {
	return Boolean(true), nil
}

func fnFalse(_ *evaluator, _ []Value) (Value, error) {
	return Boolean(false), nil
}

// fnLang walks the ancestor-or-self chain for an xml:lang attribute
// and matches it against the argument, case-insensitively, on the
// full tag or its primary subtag.
func fnLang(ev *evaluator, args []Value) (Value, error) {
	want := toString(args[0])
	for n := ev.context().node; n != nil; n = n.Parent() {
		e, ok := n.(*dom.Element)
		if !ok {
			continue
		}
		a, ok := e.Attribute("xml:lang")
		if !ok {
			continue
		}
		got := a.Value()
		if strings.EqualFold(got, want) {
			return Boolean(true), nil
		}
		if i := strings.IndexByte(got, '-'); i >= 0 && strings.EqualFold(got[:i], want) {
			return Boolean(true), nil
		}
		return Boolean(false), nil
	}
	return Boolean(false), nil
}

func fnNumber(ev *evaluator, args []Value) (Value, error) {
	if len(args) == 0 {
		return Number(stringToNumber(ev.context().node.StringValue())), nil
	}
	return Number(toNumber(args[0])), nil
}

func fnSum(_ *evaluator, args []Value) (Value, error) {
	ns, ok := args[0].(NodeSet)
	if !ok {
		return nil, evalErrorf("sum of %s, need a node-set", args[0].Kind())
	}
	var total float64
	for _, n := range ns {
		total += stringToNumber(n.StringValue())
	}
	return Number(total), nil
}

func fnFloor(_ *evaluator, args []Value) (Value, error) {
	return Number(math.Floor(toNumber(args[0]))), nil
}

func fnCeiling(_ *evaluator, args []Value) (Value, error) {
	return Number(math.Ceil(toNumber(args[0]))), nil
}

// fnRound rounds with ties toward positive infinity.
func fnRound(_ *evaluator, args []Value) (Value, error) {
	return Number(xpathRound(toNumber(args[0]))), nil
}

func xpathRound(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	return math.Floor(f + 0.5)
}

func fnString(ev *evaluator, args []Value) (Value, error) {
	if len(args) == 0 {
		return String(ev.context().node.StringValue()), nil
	}
	return String(toString(args[0])), nil
}

func fnConcat(_ *evaluator, args []Value) (Value, error) {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(toString(a))
	}
	return String(sb.String()), nil
}

func fnStartsWith(_ *evaluator, args []Value) (Value, error) {
	return Boolean(strings.HasPrefix(toString(args[0]), toString(args[1]))), nil
}

func fnContains(_ *evaluator, args []Value) (Value, error) {
	return Boolean(strings.Contains(toString(args[0]), toString(args[1]))), nil
}

func fnSubstringBefore(_ *evaluator, args []Value) (Value, error) {
	s, sep := toString(args[0]), toString(args[1])
	if i := strings.Index(s, sep); i >= 0 {
		return String(s[:i]), nil
	}
	return String(""), nil
}

func fnSubstringAfter(_ *evaluator, args []Value) (Value, error) {
	s, sep := toString(args[0]), toString(args[1])
	if i := strings.Index(s, sep); i >= 0 {
		return String(s[i+len(sep):]), nil
	}
	return String(""), nil
}

// fnSubstring keeps the characters at 1-based positions p where
// p >= round(start) and p < round(start) + round(length). NaN bounds
// satisfy neither comparison, so the result collapses to empty.
func fnSubstring(_ *evaluator, args []Value) (Value, error) {
	runes := []rune(toString(args[0]))
	start := xpathRound(toNumber(args[1]))
	end := math.Inf(1)
	if len(args) == 3 {
		end = start + xpathRound(toNumber(args[2]))
	}
	var sb strings.Builder
	for i, r := range runes {
		p := float64(i + 1)
		if p >= start && p < end {
			sb.WriteRune(r)
		}
	}
	return String(sb.String()), nil
}

func fnStringLength(ev *evaluator, args []Value) (Value, error) {
	var s string
	if len(args) == 0 {
		s = ev.context().node.StringValue()
	} else {
		s = toString(args[0])
	}
	return Number(len([]rune(s))), nil
}

func fnNormalizeSpace(ev *evaluator, args []Value) (Value, error) {
	var s string
	if len(args) == 0 {
		s = ev.context().node.StringValue()
	} else {
		s = toString(args[0])
	}
	return String(strings.Join(strings.Fields(s), " ")), nil
}

// fnTranslate maps characters of src positionally from 'from' to
// 'to'. The first occurrence in 'from' wins; characters without a
// 'to' counterpart are deleted; excess in 'to' is ignored.
func fnTranslate(_ *evaluator, args []Value) (Value, error) {
	src := toString(args[0])
	from := []rune(toString(args[1]))
	to := []rune(toString(args[2]))

	mapping := make(map[rune]rune, len(from))
	drop := make(map[rune]bool)
	for i, r := range from {
		if _, seen := mapping[r]; seen || drop[r] {
			continue
		}
		if i < len(to) {
			mapping[r] = to[i]
		} else {
			drop[r] = true
		}
	}

	var sb strings.Builder
	for _, r := range src {
		if drop[r] {
			continue
		}
		if m, ok := mapping[r]; ok {
			sb.WriteRune(m)
			continue
		}
		sb.WriteRune(r)
	}
	return String(sb.String()), nil
}
