package markup

// Tag is one located element occurrence. Offsets are byte offsets into the
// scanned content; Raw is content[Start:End].
type Tag struct {
	Start int
	End   int
	// lowercased tag name
	Name string
	Raw  string
	// attribute text between the tag name and '>', trailing '/' included
	AttrText string
	// text between the start tag and the end tag, if any
	Inner string
}

// Attributes parses the tag's attribute text. See ParseAttributes.
func (t Tag) Attributes() (Attributes, bool) {
	return ParseAttributes(t.AttrText)
}
