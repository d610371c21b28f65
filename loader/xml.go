package loader

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/dshills/settle"
)

// XMLLoader loads settings from XML sources. The document element's
// children are sections and their children are keys; element text
// supplies the values, with deeper structure carried as nested maps.
// XML text is untyped, so inference is on by default.
type XMLLoader struct{}

var _ settle.Loader = XMLLoader{}

func init() {
	settle.RegisterLoader(XMLLoader{})
}

// Extensions lists the file extensions this loader claims.
func (XMLLoader) Extensions() []string { return []string{"xml"} }

// InferByDefault reports whether inference runs when the caller did not
// choose.
func (XMLLoader) InferByDefault() bool { return true }

// Load parses XML data into ordered entries.
func (XMLLoader) Load(data []byte) ([]settle.Entry, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &settle.ParseError{Message: err.Error(), Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, nil
	}

	children := root.ChildElements()
	entries := make([]settle.Entry, 0, len(children))
	for _, el := range children {
		inner := el.ChildElements()
		if len(inner) == 0 {
			entries = append(entries, settle.Entry{Key: el.Tag, Value: strings.TrimSpace(el.Text())})
			continue
		}
		sec := make([]settle.Entry, 0, len(inner))
		for _, kv := range inner {
			sec = append(sec, settle.Entry{Key: kv.Tag, Value: xmlValue(kv)})
		}
		entries = append(entries, settle.Entry{Key: el.Tag, Value: sec})
	}
	return entries, nil
}

// xmlValue renders an element as its trimmed text, or as a nested map
// when it has child elements.
func xmlValue(el *etree.Element) any {
	children := el.ChildElements()
	if len(children) == 0 {
		return strings.TrimSpace(el.Text())
	}
	out := make(map[string]any, len(children))
	for _, c := range children {
		out[c.Tag] = xmlValue(c)
	}
	return out
}
