package loader

import (
	"gopkg.in/yaml.v3"

	"github.com/dshills/settle"
)

// YAMLLoader loads settings from YAML sources. The document is walked
// through yaml.Node so mapping order survives; plain Unmarshal into a
// map would lose it. YAML is typed, so inference is off by default.
type YAMLLoader struct{}

var _ settle.Loader = YAMLLoader{}

func init() {
	settle.RegisterLoader(YAMLLoader{})
}

// Extensions lists the file extensions this loader claims.
func (YAMLLoader) Extensions() []string { return []string{"yaml", "yml"} }

// InferByDefault reports whether inference runs when the caller did not
// choose.
func (YAMLLoader) InferByDefault() bool { return false }

// Load parses YAML data into ordered entries.
func (YAMLLoader) Load(data []byte) ([]settle.Entry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &settle.ParseError{Message: err.Error(), Err: err}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}

	doc := resolveAlias(root.Content[0])
	if doc.Kind != yaml.MappingNode {
		return nil, &settle.ParseError{
			Line:    doc.Line,
			Column:  doc.Column,
			Message: "top level must be a mapping",
		}
	}

	entries := make([]settle.Entry, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		keyNode := doc.Content[i]
		valNode := resolveAlias(doc.Content[i+1])
		if valNode.Kind == yaml.MappingNode {
			sec, err := yamlSection(valNode)
			if err != nil {
				return nil, err
			}
			entries = append(entries, settle.Entry{Key: keyNode.Value, Value: sec})
			continue
		}
		v, err := yamlValue(valNode)
		if err != nil {
			return nil, err
		}
		entries = append(entries, settle.Entry{Key: keyNode.Value, Value: v})
	}
	return entries, nil
}

// yamlSection converts a mapping node into ordered entries.
func yamlSection(node *yaml.Node) ([]settle.Entry, error) {
	out := make([]settle.Entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		v, err := yamlValue(resolveAlias(node.Content[i+1]))
		if err != nil {
			return nil, err
		}
		out = append(out, settle.Entry{Key: node.Content[i].Value, Value: v})
	}
	return out, nil
}

// yamlValue decodes a node into plain Go values.
func yamlValue(node *yaml.Node) (any, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, &settle.ParseError{
			Line:    node.Line,
			Column:  node.Column,
			Message: err.Error(),
			Err:     err,
		}
	}
	return v, nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
