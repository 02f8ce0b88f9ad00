package doctree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// MaxDepth bounds nesting while decoding. It also stops self-referencing YAML
// aliases from expanding forever.
const MaxDepth = 256

// ErrTooDeep is returned when a document nests deeper than MaxDepth.
var ErrTooDeep = errors.New("doctree: document nested too deeply")

// DecodeJSON reads one JSON value, keeping object keys in document order.
func DecodeJSON(r io.Reader) (*Node, error) {
	dec := json.NewDecoder(r)
	root, err := decodeJSONValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("doctree: trailing data after JSON document")
	}
	return root, nil
}

func decodeJSONValue(dec *json.Decoder, depth int) (*Node, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("doctree: read json: %w", err)
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			node := &Node{Kind: KindMapping}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("doctree: read json key: %w", err)
				}
				key, _ := keyTok.(string)
				value, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				node.Fields = append(node.Fields, Field{Key: key, Value: value})
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("doctree: read json: %w", err)
			}
			return node, nil
		case '[':
			node := &Node{Kind: KindSequence}
			for dec.More() {
				item, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				node.Items = append(node.Items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("doctree: read json: %w", err)
			}
			return node, nil
		}
		return nil, fmt.Errorf("doctree: unexpected delimiter %q", v)
	case string:
		return String(v), nil
	default:
		return Other(), nil
	}
}

// DecodeYAML parses a YAML document, keeping mapping keys in document order.
func DecodeYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("doctree: parse yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("doctree: empty yaml document")
	}
	return fromYAML(doc.Content[0], 0)
}

func fromYAML(n *yaml.Node, depth int) (*Node, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!str" {
			return String(n.Value), nil
		}
		return Other(), nil
	case yaml.SequenceNode:
		node := &Node{Kind: KindSequence, Items: make([]*Node, 0, len(n.Content))}
		for _, c := range n.Content {
			item, err := fromYAML(c, depth+1)
			if err != nil {
				return nil, err
			}
			node.Items = append(node.Items, item)
		}
		return node, nil
	case yaml.MappingNode:
		node := &Node{Kind: KindMapping, Fields: make([]Field, 0, len(n.Content)/2)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			value, err := fromYAML(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			node.Fields = append(node.Fields, Field{Key: n.Content[i].Value, Value: value})
		}
		return node, nil
	case yaml.AliasNode:
		if n.Alias == nil {
			return Other(), nil
		}
		return fromYAML(n.Alias, depth+1)
	default:
		return Other(), nil
	}
}
