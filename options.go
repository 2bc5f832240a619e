package robin

import "github.com/lestrrat-go/option"

type Option = option.Interface

type identPreserveSpace struct{}
type identPreserveComment struct{}
type identPreserveCdata struct{}
type identPreserveDtdStructure struct{}
type identDocumentName struct{}
type identAllowMissingNamespaces struct{}
type identShowWarnings struct{}
type identAllowDefaultNamespaceBindings struct{}
type identEnsureUniqueNamespacedAttributes struct{}

// ParseOption configures a single Parse invocation.
type ParseOption interface {
	Option
	parseOption()
}

type parseOption struct{ Option }

func (*parseOption) parseOption() {}

func newParseOption(ident, value interface{}) ParseOption {
	return &parseOption{option.New(ident, value)}
}

// WithPreserveSpace controls whether whitespace-only text is kept as
// text nodes (default true).
func WithPreserveSpace(v bool) ParseOption {
	return newParseOption(identPreserveSpace{}, v)
}

// WithPreserveComment controls whether comments become tree nodes
// (default true). When off, comments are consumed and discarded.
func WithPreserveComment(v bool) ParseOption {
	return newParseOption(identPreserveComment{}, v)
}

// WithPreserveCdata controls whether CDATA sections become text nodes
// (default true).
func WithPreserveCdata(v bool) ParseOption {
	return newParseOption(identPreserveCdata{}, v)
}

// WithPreserveDtdStructure controls whether the doctype node captures
// the full declaration or just the doctype name (default false: name
// only).
func WithPreserveDtdStructure(v bool) ParseOption {
	return newParseOption(identPreserveDtdStructure{}, v)
}

// WithDocumentName sets the root node's display name (default
// "Document").
func WithDocumentName(v string) ParseOption {
	return newParseOption(identDocumentName{}, v)
}

// WithAllowMissingNamespaces downgrades unresolved-namespace errors
// to a silent skip (default false). XML mode only.
func WithAllowMissingNamespaces(v bool) ParseOption {
	return newParseOption(identAllowMissingNamespaces{}, v)
}

// WithShowWarnings controls whether warnings are collected on the
// parse result (default true).
func WithShowWarnings(v bool) ParseOption {
	return newParseOption(identShowWarnings{}, v)
}

// WithAllowDefaultNamespaceBindings controls whether an in-scope
// default namespace binds unprefixed elements (default true). XML
// mode only.
func WithAllowDefaultNamespaceBindings(v bool) ParseOption {
	return newParseOption(identAllowDefaultNamespaceBindings{}, v)
}

// WithEnsureUniqueNamespacedAttributes controls the per-element check
// that no two attributes share an expanded name (default true). XML
// mode only.
func WithEnsureUniqueNamespacedAttributes(v bool) ParseOption {
	return newParseOption(identEnsureUniqueNamespacedAttributes{}, v)
}

type parseConfig struct {
	preserveSpace                    bool
	preserveComment                  bool
	preserveCdata                    bool
	preserveDtdStructure             bool
	documentName                     string
	allowMissingNamespaces           bool
	showWarnings                     bool
	allowDefaultNamespaceBindings    bool
	ensureUniqueNamespacedAttributes bool
}

func defaultParseConfig() *parseConfig {
	return &parseConfig{
		preserveSpace:                    true,
		preserveComment:                  true,
		preserveCdata:                    true,
		preserveDtdStructure:             false,
		documentName:                     "Document",
		allowMissingNamespaces:           false,
		showWarnings:                     true,
		allowDefaultNamespaceBindings:    true,
		ensureUniqueNamespacedAttributes: true,
	}
}

func (c *parseConfig) apply(options ...ParseOption) {
	for _, o := range options {
		switch o.Ident().(type) {
		case identPreserveSpace:
			c.preserveSpace = o.Value().(bool)
		case identPreserveComment:
			c.preserveComment = o.Value().(bool)
		case identPreserveCdata:
			c.preserveCdata = o.Value().(bool)
		case identPreserveDtdStructure:
			c.preserveDtdStructure = o.Value().(bool)
		case identDocumentName:
			c.documentName = o.Value().(string)
		case identAllowMissingNamespaces:
			c.allowMissingNamespaces = o.Value().(bool)
		case identShowWarnings:
			c.showWarnings = o.Value().(bool)
		case identAllowDefaultNamespaceBindings:
			c.allowDefaultNamespaceBindings = o.Value().(bool)
		case identEnsureUniqueNamespacedAttributes:
			c.ensureUniqueNamespacedAttributes = o.Value().(bool)
		}
	}
}
