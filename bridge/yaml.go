// Package bridge converts between YAML and the toon value model, so
// existing YAML documents can be reformatted as TOON and back. It
// works on yaml.v3 nodes rather than maps to keep mapping entry order
// intact in both directions.
//
// Sequence origin does not survive the YAML side: tuples and sets
// flatten to plain YAML sequences.
package bridge

import (
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/toon-format/toon-go/toon"
)

// maxDepth bounds alias expansion so malicious alias chains cannot
// recurse unboundedly.
const maxDepth = 10000

// FromYAML converts a YAML document to a Value tree. Mapping entry
// order is preserved. An empty document becomes null.
func FromYAML(data []byte) (*toon.Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "decode YAML")
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return toon.Null(), nil
	}
	return fromNode(root.Content[0], 0)
}

func fromNode(n *yaml.Node, depth int) (*toon.Value, error) {
	if depth > maxDepth {
		return nil, errors.New("YAML document nests too deeply")
	}

	switch n.Kind {
	case yaml.AliasNode:
		return fromNode(n.Alias, depth+1)

	case yaml.ScalarNode:
		return fromScalarNode(n)

	case yaml.SequenceNode:
		items := make([]*toon.Value, len(n.Content))
		for i, c := range n.Content {
			item, err := fromNode(c, depth+1)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return toon.List(items...), nil

	case yaml.MappingNode:
		entries := make([]toon.Entry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, errors.Newf("line %d: non-scalar mapping key", keyNode.Line)
			}
			for _, e := range entries {
				if e.Key == keyNode.Value {
					return nil, errors.Newf("line %d: duplicate key %q", keyNode.Line, keyNode.Value)
				}
			}
			v, err := fromNode(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			entries = append(entries, toon.Field(keyNode.Value, v))
		}
		return toon.Map(entries...), nil

	default:
		return nil, errors.Newf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func fromScalarNode(n *yaml.Node) (*toon.Value, error) {
	switch n.Tag {
	case "!!null":
		return toon.Null(), nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad bool", n.Line)
		}
		return toon.Bool(b), nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad int", n.Line)
		}
		return toon.Int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad float", n.Line)
		}
		return toon.Float(f), nil
	default:
		return toon.Str(n.Value), nil
	}
}

// ToYAML converts a Value tree to YAML text. Mapping and record entry
// order is preserved; tuple and set sequences become plain sequences.
func ToYAML(v *toon.Value) ([]byte, error) {
	n, err := toNode(v)
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(n)
	return out, errors.Wrap(err, "encode YAML")
}

func toNode(v *toon.Value) (*yaml.Node, error) {
	switch v.Kind() {
	case toon.KindNull:
		return scalarNode("!!null", "null"), nil
	case toon.KindBool:
		b, _ := v.AsBool()
		return scalarNode("!!bool", strconv.FormatBool(b)), nil
	case toon.KindInt:
		i, _ := v.AsInt()
		return scalarNode("!!int", strconv.FormatInt(i, 10)), nil
	case toon.KindFloat:
		f, _ := v.AsFloat()
		return scalarNode("!!float", formatYAMLFloat(f)), nil
	case toon.KindStr:
		s, _ := v.AsStr()
		n := scalarNode("!!str", s)
		// Keep strings that look like other scalars unambiguous.
		n.Style = yaml.DoubleQuotedStyle
		return n, nil
	case toon.KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items() {
			c, err := toNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case toon.KindMapping, toon.KindRecord:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range v.Entries() {
			c, err := toNode(e.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, scalarNode("!!str", e.Key), c)
		}
		return n, nil
	default:
		return nil, errors.Newf("unsupported value kind %s", v.Kind())
	}
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func formatYAMLFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
