package spec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML renders a Value as a YAML document. Map keys keep insertion
// order and Null renders as an explicit null.
func MarshalYAML(v Value) ([]byte, error) {
	node, err := toYAMLNode(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalJSONIndent renders a Value as indented JSON, keeping map order.
func MarshalJSONIndent(v Value) ([]byte, error) {
	compact, err := MarshalValueJSON(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func toYAMLNode(v Value) (*yaml.Node, error) {
	switch val := v.(type) {
	case nil, Null:
		return scalarNode(nil)
	case String:
		return scalarNode(string(val))
	case Int:
		return scalarNode(int64(val))
	case Float:
		return scalarNode(float64(val))
	case Bool:
		return scalarNode(bool(val))
	case List:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, elem := range val {
			child, err := toYAMLNode(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case *Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range val.keys {
			key, err := scalarNode(k)
			if err != nil {
				return nil, err
			}
			child, err := toYAMLNode(val.vals[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			node.Content = append(node.Content, key, child)
		}
		return node, nil
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// scalarNode lets yaml.v3 pick the tag and quoting style, so strings such
// as "true" or "512" stay strings when read back.
func scalarNode(v any) (*yaml.Node, error) {
	node := &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	return node, nil
}
