package lazyload

import "strings"

type declaration struct {
	Property string
	Value    string
}

// Style is an ordered list of inline CSS declarations.
type Style struct {
	decls []declaration
}

// Set replaces property in place or appends it.
func (s *Style) Set(property, value string) {
	for i := range s.decls {
		if s.decls[i].Property == property {
			s.decls[i].Value = value
			return
		}
	}
	s.decls = append(s.decls, declaration{Property: property, Value: value})
}

func (s *Style) Delete(property string) {
	for i := range s.decls {
		if s.decls[i].Property == property {
			s.decls = append(s.decls[:i:i], s.decls[i+1:]...)
			return
		}
	}
}

func (s Style) Get(property string) (string, bool) {
	for _, d := range s.decls {
		if d.Property == property {
			return d.Value, true
		}
	}
	return "", false
}

func (s Style) Len() int {
	return len(s.decls)
}

// String renders "prop: value; prop: value;".
func (s Style) String() string {
	parts := make([]string, len(s.decls))
	for i, d := range s.decls {
		parts[i] = d.Property + ": " + d.Value + ";"
	}
	return strings.Join(parts, " ")
}
