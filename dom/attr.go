package dom

// Attribute is a name="value" pair on an element or on the XML
// declaration pseudo-element. A namespaced attribute holds a back
// reference to the declaration its prefix resolved through.
type Attribute struct {
	docnode
	local     string
	prefix    string
	value     string
	namespace *Namespace
}

func NewAttribute(local, prefix, value string) *Attribute {
	return &Attribute{
		docnode: docnode{typ: AttributeNode},
		local:   local,
		prefix:  prefix,
		value:   value,
	}
}

func (a *Attribute) LocalName() string { return a.local }

func (a *Attribute) Prefix() string { return a.prefix }

func (a *Attribute) QualifiedName() string {
	if a.prefix == "" {
		return a.local
	}
	return a.prefix + ":" + a.local
}

func (a *Attribute) Value() string { return a.value }

func (a *Attribute) SetValue(v string) { a.value = v }

func (a *Attribute) Namespace() *Namespace { return a.namespace }

func (a *Attribute) BindNamespace(ns *Namespace) { a.namespace = ns }

// ExpandedName is the (namespace URI, local) pair used for
// namespace-aware equality checks, joined for map keying.
func (a *Attribute) ExpandedName() string {
	if a.namespace == nil {
		return a.local
	}
	return a.namespace.URI() + ":" + a.local
}

// StringValue of an attribute is its value.
func (a *Attribute) StringValue() string { return a.value }
