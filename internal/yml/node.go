package yml

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	Node yaml.Node
)

// Root returns the first content node of a document
func (n *Node) Root() *Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return (*Node)(n.Content[0])
	}
	return n
}

// Lookup returns the value of a mapping key, matched case-insensitively
func (n *Node) Lookup(name string) *Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if strings.EqualFold(n.Content[i].Value, name) {
			return (*Node)(n.Content[i+1])
		}
	}
	return nil
}

func (n *Node) Items(callback func(index int, node *Node) error) error {
	for i := 0; i < len(n.Content); i++ {
		if err := callback(i, (*Node)(n.Content[i])); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) Pairs(callback func(key string, node *Node) error) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := callback(n.Content[i].Value, (*Node)(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

// Decode decodes the node into dest
func (n *Node) Decode(dest interface{}) error {
	return (*yaml.Node)(n).Decode(dest)
}

// Strings returns a scalar as a one element slice or a sequence of scalars
func (n *Node) Strings() ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "" {
			return nil, nil
		}
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		var result []string
		err := n.Items(func(_ int, item *Node) error {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: expected scalar", item.Line)
			}
			result = append(result, item.Value)
			return nil
		})
		return result, err
	}
	return nil, fmt.Errorf("line %d: expected scalar or sequence", n.Line)
}
