package models

import "golang.org/x/net/html"

// BodyKind identifies which body a macro carries.
type BodyKind string

const (
	BodyNone  BodyKind = ""
	BodyRich  BodyKind = "rich-text"
	BodyPlain BodyKind = "plain-text"
)

// MacroDescriptor is the extracted form of one macro node.
// At most one body is populated; Kind says which.
type MacroDescriptor struct {
	Name       string
	Parameters map[string]string
	Metadata   map[string]string

	Kind      BodyKind
	RichBody  *html.Node
	PlainBody string
}

// Param returns the first non-empty parameter among keys.
func (m MacroDescriptor) Param(keys ...string) string {
	for _, k := range keys {
		if v := m.Parameters[k]; v != "" {
			return v
		}
	}
	return ""
}
