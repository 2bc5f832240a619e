package xpath_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziord/robin"
	"github.com/ziord/robin/dom"
	"github.com/ziord/robin/xpath"
)

func mustParse(t *testing.T, markup string) *dom.Root {
	t.Helper()
	doc, err := robin.Parse(markup)
	require.NoError(t, err)
	return doc
}

func query(t *testing.T, doc *dom.Root, q string) xpath.Value {
	t.Helper()
	v, err := xpath.Query(doc, q)
	require.NoError(t, err, "query %s", q)
	return v
}

func queryNodes(t *testing.T, doc *dom.Root, q string) xpath.NodeSet {
	t.Helper()
	v := query(t, doc, q)
	ns, ok := v.(xpath.NodeSet)
	require.True(t, ok, "query %s yields %T", q, v)
	return ns
}

func queryNumber(t *testing.T, doc *dom.Root, q string) float64 {
	t.Helper()
	v := query(t, doc, q)
	n, ok := v.(xpath.Number)
	require.True(t, ok, "query %s yields %T", q, v)
	return float64(n)
}

func queryString(t *testing.T, doc *dom.Root, q string) string {
	t.Helper()
	v := query(t, doc, q)
	s, ok := v.(xpath.String)
	require.True(t, ok, "query %s yields %T", q, v)
	return string(s)
}

func queryBool(t *testing.T, doc *dom.Root, q string) bool {
	t.Helper()
	v := query(t, doc, q)
	b, ok := v.(xpath.Boolean)
	require.True(t, ok, "query %s yields %T", q, v)
	return bool(b)
}

const seedDoc = `<tag id='1'>some value<data id='2'>123456</data></tag>`

func TestBasicPath(t *testing.T) {
	doc := mustParse(t, seedDoc)

	ns := queryNodes(t, doc, `/tag/data`)
	require.Len(t, ns, 1)
	data, ok := ns[0].(*dom.Element)
	require.True(t, ok)
	assert.Equal(t, "data", data.LocalName())

	assert.Equal(t, float64(123456), queryNumber(t, doc, `number((//data)[1])`))
	assert.Equal(t, float64(6), queryNumber(t, doc, `string-length(normalize-space(//data))`))
}

const toolsDoc = `<tools><tool id='1'/><tool id='2'/><tool id='3'/><tool id='4'/></tools>`

func toolID(t *testing.T, n dom.Node) string {
	t.Helper()
	e, ok := n.(*dom.Element)
	require.True(t, ok)
	a, ok := e.Attribute("id")
	require.True(t, ok)
	return a.Value()
}

func TestAxesAndPredicates(t *testing.T) {
	doc := mustParse(t, toolsDoc)

	ns := queryNodes(t, doc, `//tool[last()]`)
	require.Len(t, ns, 1)
	assert.Equal(t, "4", toolID(t, ns[0]))

	ns = queryNodes(t, doc, `//tool[position()>4]`)
	assert.Len(t, ns, 0)

	ns = queryNodes(t, doc, `(//tool)[1]/following-sibling::tool`)
	require.Len(t, ns, 3)
	var ids []string
	for _, n := range ns {
		ids = append(ids, toolID(t, n))
	}
	assert.Equal(t, []string{"2", "3", "4"}, ids)
}

func TestPositionalPredicateScope(t *testing.T) {
	doc := mustParse(t, `<r><g><x id='1'/><x id='2'/></g><g><x id='3'/></g></r>`)

	// //X[1]: first per parent; (//X)[1]: globally first
	ns := queryNodes(t, doc, `//x[1]`)
	require.Len(t, ns, 2)
	assert.Equal(t, "1", toolID(t, ns[0]))
	assert.Equal(t, "3", toolID(t, ns[1]))

	ns = queryNodes(t, doc, `(//x)[1]`)
	require.Len(t, ns, 1)
	assert.Equal(t, "1", toolID(t, ns[0]))
}

func TestReverseAxes(t *testing.T) {
	doc := mustParse(t, `<a><b><c/></b></a>`)

	// the nearest ancestor comes first on reverse axes
	ns := queryNodes(t, doc, `//c/ancestor::*[1]`)
	require.Len(t, ns, 1)
	assert.Equal(t, "b", ns[0].(*dom.Element).LocalName())

	ns = queryNodes(t, doc, `//c/ancestor::node()`)
	assert.Len(t, ns, 3, "chain runs from parent to the root, root included")

	ns = queryNodes(t, doc, `//c/ancestor-or-self::*`)
	assert.Len(t, ns, 3)
}

func TestSiblingAxes(t *testing.T) {
	doc := mustParse(t, `<r><a/><b/><c/><d/></r>`)

	ns := queryNodes(t, doc, `//c/preceding-sibling::*`)
	require.Len(t, ns, 2)
	assert.Equal(t, "a", ns[0].(*dom.Element).LocalName(), "results come back in document order")

	ns = queryNodes(t, doc, `//c/preceding-sibling::*[1]`)
	require.Len(t, ns, 1)
	assert.Equal(t, "b", ns[0].(*dom.Element).LocalName(), "position 1 is the nearest sibling")
}

func TestSelfAndParentOfRoot(t *testing.T) {
	doc := mustParse(t, `<a/>`)
	ns := queryNodes(t, doc, `/self::node()`)
	require.Len(t, ns, 1)
	assert.Equal(t, dom.Node(doc), ns[0])

	ns = queryNodes(t, doc, `/parent::node()`)
	assert.Len(t, ns, 0)
}

func TestTreePartition(t *testing.T) {
	doc := mustParse(t, `<a><b><c/></b><d/><e><f/></e></a>`)
	total := queryNumber(t, doc, `count(//node())`) + 1 // plus the root container

	// every node lands in exactly one of the five partitions
	for _, ctx := range []string{`//d`, `//c`, `//f`, `//b`, `/a`} {
		sum := queryNumber(t, doc, `count(`+ctx+`/preceding::node())`) +
			queryNumber(t, doc, `count(`+ctx+`/ancestor::node())`) +
			queryNumber(t, doc, `count(`+ctx+`/self::node())`) +
			queryNumber(t, doc, `count(`+ctx+`/descendant::node())`) +
			queryNumber(t, doc, `count(`+ctx+`/following::node())`)
		assert.Equal(t, total, sum, "partition law for context %s", ctx)
	}
}

func TestDescendantCountLaw(t *testing.T) {
	doc := mustParse(t, `<a><b><c/></b><d/></a>`)
	all := queryNumber(t, doc, `count(//*)`)
	desc := queryNumber(t, doc, `count(/descendant::*)`)
	assert.Equal(t, desc, all, "descendant from the root covers every element")
	assert.Equal(t, float64(4), all)
}

func TestAttributeAxis(t *testing.T) {
	doc := mustParse(t, `<a x="1" y="2"><b z="3"/></a>`)

	ns := queryNodes(t, doc, `//@*`)
	assert.Len(t, ns, 3)

	ns = queryNodes(t, doc, `/a/@x`)
	require.Len(t, ns, 1)
	assert.Equal(t, "1", ns[0].(*dom.Attribute).Value())

	assert.True(t, queryBool(t, doc, `boolean(//b[@z="3"])`))
	assert.False(t, queryBool(t, doc, `boolean(//b[@z="4"])`))
}

func TestNamespaceAxis(t *testing.T) {
	doc := mustParse(t, `<r xmlns:p="urn:x"><c/></r>`)
	ns := queryNodes(t, doc, `//c/namespace::*`)
	prefixes := map[string]bool{}
	for _, n := range ns {
		prefixes[n.(*dom.Namespace).Prefix()] = true
	}
	assert.True(t, prefixes["p"], "declarations on ancestors are in scope")
	assert.True(t, prefixes["xml"], "the xml binding is always in scope")
	assert.False(t, prefixes["xmlns"])
}

func TestNamespaceNameTests(t *testing.T) {
	doc := mustParse(t, `<r xmlns:p="urn:x" xmlns:q="urn:y"><p:c/><q:d/><e/></r>`)

	ns := queryNodes(t, doc, `/r/p:*`)
	require.Len(t, ns, 1)
	assert.Equal(t, "c", ns[0].(*dom.Element).LocalName())

	ns = queryNodes(t, doc, `/r/p:c`)
	require.Len(t, ns, 1)

	ns = queryNodes(t, doc, `/r/q:*`)
	require.Len(t, ns, 1)
	assert.Equal(t, "d", ns[0].(*dom.Element).LocalName())
}

func TestKindTests(t *testing.T) {
	doc := mustParse(t, `<a>text<!-- c --><?pi data?><b/></a>`)

	assert.Len(t, queryNodes(t, doc, `/a/text()`), 1)
	assert.Len(t, queryNodes(t, doc, `/a/comment()`), 1)
	assert.Len(t, queryNodes(t, doc, `/a/processing-instruction()`), 1)
	assert.Len(t, queryNodes(t, doc, `/a/processing-instruction("pi")`), 1)
	assert.Len(t, queryNodes(t, doc, `/a/processing-instruction("other")`), 0)
	assert.Len(t, queryNodes(t, doc, `/a/node()`), 4)
}

func TestArithmetic(t *testing.T) {
	doc := mustParse(t, `<a/>`)

	assert.Equal(t, float64(7), queryNumber(t, doc, `1 + 2 * 3`))
	assert.Equal(t, float64(1), queryNumber(t, doc, `7 mod 3`))
	assert.Equal(t, 3.5, queryNumber(t, doc, `7 div 2`))
	assert.True(t, math.IsInf(queryNumber(t, doc, `1 div 0`), 1))
	assert.True(t, math.IsInf(queryNumber(t, doc, `-1 div 0`), -1))
	assert.True(t, math.IsNaN(queryNumber(t, doc, `0 div 0`)))
	assert.True(t, math.IsNaN(queryNumber(t, doc, `"x" mod 2`)))
	assert.Equal(t, float64(-3), queryNumber(t, doc, `-3`))
}

func TestComparisons(t *testing.T) {
	doc := mustParse(t, toolsDoc)

	assert.True(t, queryBool(t, doc, `//tool/@id = "3"`), "a set matches when any member matches")
	assert.False(t, queryBool(t, doc, `//tool/@id = "5"`))
	assert.True(t, queryBool(t, doc, `//tool/@id > 3`))
	assert.False(t, queryBool(t, doc, `//tool/@id > 4`))
	assert.True(t, queryBool(t, doc, `//tool/@id != "1"`), "!= is also existential")
	assert.True(t, queryBool(t, doc, `//tool = //tool`))

	assert.True(t, queryBool(t, doc, `1 = 1 and 1 < 2`))
	assert.True(t, queryBool(t, doc, `"1" = 1`), "numbers win over strings in mixed equality")
	assert.True(t, queryBool(t, doc, `true() = "x"`), "booleans win over everything")
	assert.True(t, queryBool(t, doc, `//tool = true()`))

	// against a boolean the whole set is coerced, so an empty set
	// compares as false rather than never matching
	assert.True(t, queryBool(t, doc, `//missing = false()`))
	assert.False(t, queryBool(t, doc, `//missing = true()`))
	assert.True(t, queryBool(t, doc, `//missing != true()`))
	assert.True(t, queryBool(t, doc, `false() = //missing`))
	assert.False(t, queryBool(t, doc, `//missing = "x"`), "string comparison stays existential")
}

func TestShortCircuit(t *testing.T) {
	doc := mustParse(t, `<a/>`)
	// the right side would be an unknown-function error if evaluated
	assert.False(t, queryBool(t, doc, `false() and bogus()`))
	assert.True(t, queryBool(t, doc, `true() or bogus()`))
}

func TestUnion(t *testing.T) {
	doc := mustParse(t, `<r><a/><b/></r>`)
	ns := queryNodes(t, doc, `//a | //b | //a`)
	assert.Len(t, ns, 2, "unions are sets")
	assert.Equal(t, "a", ns[0].(*dom.Element).LocalName(), "document order")

	_, err := xpath.Query(doc, `//a | 1`)
	require.Error(t, err)
	var everr xpath.EvalError
	require.ErrorAs(t, err, &everr)
}

func TestFilterPredicateNonNodeSet(t *testing.T) {
	doc := mustParse(t, `<a/>`)
	_, err := xpath.Query(doc, `(1 + 2)[1]`)
	require.Error(t, err, "predicates only apply to node sets")
	var everr xpath.EvalError
	require.ErrorAs(t, err, &everr)
}

func TestCoercionInvariants(t *testing.T) {
	doc := mustParse(t, `<a/>`)
	for _, x := range []string{"0", "1", "-42", "3.5", "123456"} {
		assert.Equal(t, queryNumber(t, doc, x), queryNumber(t, doc, `number(string(`+x+`))`), "number/string round trip for %s", x)
	}
	assert.True(t, queryBool(t, doc, `not(not(true()))`))
	assert.False(t, queryBool(t, doc, `not(not(false()))`))
	assert.Equal(t, "NaN", queryString(t, doc, `string(0 div 0)`))
	assert.Equal(t, "Infinity", queryString(t, doc, `string(1 div 0)`))
	assert.Equal(t, "-Infinity", queryString(t, doc, `string(-1 div 0)`))
}

func TestNodeSetResultsAreDocumentOrdered(t *testing.T) {
	doc := mustParse(t, `<r><a/><b/><c/></r>`)
	ns := queryNodes(t, doc, `//c | //a | //b`)
	names := []string{}
	for _, n := range ns {
		names = append(names, n.(*dom.Element).LocalName())
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestQueryFacade(t *testing.T) {
	doc := mustParse(t, seedDoc)

	one, err := robin.QueryOne(doc, `//data`)
	require.NoError(t, err)
	e, ok := one.(dom.Node)
	require.True(t, ok)
	assert.Equal(t, "data", e.(*dom.Element).LocalName())

	all, err := robin.QueryAll(doc, `//*`)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := robin.QueryOne(doc, `count(//*)`)
	require.NoError(t, err)
	assert.Equal(t, float64(2), n)

	_, err = robin.QueryAll(doc, `count(//*)`)
	require.Error(t, err, "scalars have no node sequence")
}
