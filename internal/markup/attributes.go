package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// Attribute is one name/value pair. Name is lowercased; Value holds the
// entity-decoded text. An empty Value renders as a bare boolean attribute.
type Attribute struct {
	Name  string
	Value string
}

// Attributes is an ordered attribute list with first-occurrence-wins
// semantics for duplicate names.
type Attributes struct {
	list []Attribute
}

func NewAttributes(attrs ...Attribute) Attributes {
	var a Attributes
	for _, attr := range attrs {
		if !a.Has(attr.Name) {
			a.Set(attr.Name, attr.Value)
		}
	}
	return a
}

// ParseAttributes reads the raw attribute text of a start tag, the part
// between the tag name and the closing '>'. It accepts double-quoted,
// single-quoted and unquoted values as well as bare names.
//
// ok is false when the text cannot be read unambiguously: a stray '<' or
// quote, an unterminated quoted value, or '=' with no value. Callers leave
// such tags untouched; the returned list then holds whatever was read
// before the problem.
func ParseAttributes(raw string) (attrs Attributes, ok bool) {
	i := 0
	n := len(raw)

	for {
		// whitespace and stray slashes separate attributes
		for i < n && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= n {
			return attrs, true
		}

		start := i
		for i < n && !isSpace(raw[i]) && !isNameDelimiter(raw[i]) {
			i++
		}
		if i == start {
			// '=', quote, '<' or '>' where a name was expected
			return attrs, false
		}
		name := lowerASCII(raw[start:i])

		j := i
		for j < n && isSpace(raw[j]) {
			j++
		}
		if j >= n || raw[j] != '=' {
			attrs.add(name, "")
			continue
		}

		i = j + 1
		for i < n && isSpace(raw[i]) {
			i++
		}
		if i >= n {
			return attrs, false
		}

		var value string
		switch q := raw[i]; q {
		case '"', '\'':
			end := strings.IndexByte(raw[i+1:], q)
			if end < 0 {
				return attrs, false
			}
			value = raw[i+1 : i+1+end]
			i = i + 1 + end + 1
		default:
			vstart := i
			for i < n && !isSpace(raw[i]) {
				if raw[i] == '<' || raw[i] == '"' || raw[i] == '\'' {
					return attrs, false
				}
				i++
			}
			value = raw[vstart:i]
		}

		attrs.add(name, html.UnescapeString(value))
	}
}

func (a *Attributes) add(name, value string) {
	if a.Has(name) {
		return
	}
	a.list = append(a.list, Attribute{Name: name, Value: value})
}

func (a Attributes) index(name string) int {
	name = lowerASCII(name)
	for i, attr := range a.list {
		if attr.Name == name {
			return i
		}
	}
	return -1
}

func (a Attributes) Get(name string) (string, bool) {
	if i := a.index(name); i >= 0 {
		return a.list[i].Value, true
	}
	return "", false
}

// Value is Get without the presence flag.
func (a Attributes) Value(name string) string {
	v, _ := a.Get(name)
	return v
}

func (a Attributes) Has(name string) bool {
	return a.index(name) >= 0
}

// Set replaces the value in place, or appends a new attribute at the end.
func (a *Attributes) Set(name, value string) {
	if i := a.index(name); i >= 0 {
		a.list[i].Value = value
		return
	}
	a.list = append(a.list, Attribute{Name: lowerASCII(name), Value: value})
}

func (a *Attributes) Remove(names ...string) {
	for _, name := range names {
		if i := a.index(name); i >= 0 {
			a.list = append(a.list[:i], a.list[i+1:]...)
		}
	}
}

func (a Attributes) Len() int {
	return len(a.list)
}

// All returns a copy of the attributes in order.
func (a Attributes) All() []Attribute {
	out := make([]Attribute, len(a.list))
	copy(out, a.list)
	return out
}

func (a Attributes) Clone() Attributes {
	return Attributes{list: a.All()}
}

var attrEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`"`, "&quot;",
	`<`, "&lt;",
	`>`, "&gt;",
)

// String renders the attributes space separated, without a leading space.
func (a Attributes) String() string {
	var b strings.Builder
	for i, attr := range a.list {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(attr.Name)
		if attr.Value == "" {
			continue
		}
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(attr.Value))
		b.WriteByte('"')
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isNameDelimiter(c byte) bool {
	return c == '=' || c == '"' || c == '\'' || c == '<' || c == '>' || c == '/'
}

// lowerASCII converts ASCII characters to lowercase, keeping byte offsets
// stable for non-ASCII input.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}

	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
