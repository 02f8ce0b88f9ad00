// Package doctree holds the nested knowledge document and the token-overlap
// search over its string leaves.
//
// Trees are produced by the decoders in this package and must be acyclic.
package doctree

import "strconv"

// Kind tags the variant held by a Node.
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "other"
	}
}

// Field is one key/value pair of a mapping node. Key order follows the source.
type Field struct {
	Key   string
	Value *Node
}

// Node is one element of the knowledge tree.
type Node struct {
	Kind   Kind
	Text   string  // KindString
	Items  []*Node // KindSequence
	Fields []Field // KindMapping
}

// String builds a string leaf.
func String(s string) *Node { return &Node{Kind: KindString, Text: s} }

// Sequence builds an ordered sequence node.
func Sequence(items ...*Node) *Node { return &Node{Kind: KindSequence, Items: items} }

// Mapping builds a mapping node with fields in the given order.
func Mapping(fields ...Field) *Node { return &Node{Kind: KindMapping, Fields: fields} }

// Other builds a leaf that never matches (numbers, booleans, null).
func Other() *Node { return &Node{Kind: KindOther} }

// Get returns the value under key for mapping nodes.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindMapping {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Leaves counts string leaves reachable from n.
func (n *Node) Leaves() int {
	count := 0
	Walk(n, func(string, *Node) { count++ })
	return count
}

// Walk visits every string leaf depth-first with its path.
func Walk(root *Node, visit func(path string, leaf *Node)) {
	walk(root, make([]byte, 0, 64), visit)
}

func walk(n *Node, path []byte, visit func(string, *Node)) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindString:
		visit(string(path), n)
	case KindSequence:
		for i, item := range n.Items {
			walk(item, appendIndex(path, i), visit)
		}
	case KindMapping:
		for _, f := range n.Fields {
			walk(f.Value, appendKey(path, f.Key), visit)
		}
	}
}

func appendKey(path []byte, key string) []byte {
	p := append(path, '.')
	return append(p, key...)
}

func appendIndex(path []byte, i int) []byte {
	p := append(path, '[')
	p = strconv.AppendInt(p, int64(i), 10)
	return append(p, ']')
}
