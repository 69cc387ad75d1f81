// Package model defines the core data types for API surface extraction: Declaration, Node, Tree, and Manifest.
package model

import (
	"fmt"
	"strings"
)

// Kind is the closed set of declaration kinds a surface can hold.
type Kind int

const (
	KindUnknown Kind = iota
	KindModule
	KindFunction
	KindStruct
	KindTrait
)

var kindNames = map[Kind]string{
	KindModule:   "module",
	KindFunction: "function",
	KindStruct:   "struct",
	KindTrait:    "trait",
}

var kindAliases = map[string]Kind{
	"module":   KindModule,
	"mod":      KindModule,
	"function": KindFunction,
	"fn":       KindFunction,
	"struct":   KindStruct,
	"trait":    KindTrait,
}

// Kinds lists the valid kinds in their canonical order.
func Kinds() []Kind {
	return []Kind{KindModule, KindFunction, KindStruct, KindTrait}
}

// ParseKind resolves a kind name such as "module", "fn" or "Struct".
func ParseKind(text string) (Kind, error) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(text))]
	if !ok {
		return KindUnknown, fmt.Errorf("unknown declaration kind %q", text)
	}
	return kind, nil
}

// Valid reports whether k is one of the four surface kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("cannot marshal invalid kind %d", int(k))
	}
	return []byte(name), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Declaration is one public declaration record as supplied by a front-end.
// Path is fully qualified; its last segment is the declaration's own name.
type Declaration struct {
	Kind     Kind     `json:"kind" yaml:"kind"`
	Path     string   `json:"path" yaml:"path"`
	Doc      []string `json:"doc,omitempty" yaml:"doc,omitempty"`
	Generics []string `json:"generics,omitempty" yaml:"generics,omitempty"`
	Params   string   `json:"params,omitempty" yaml:"params,omitempty"`
}

// Node is a single declaration in a surface tree. Only modules own children.
type Node struct {
	Kind     Kind     `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Doc      []string `json:"doc,omitempty"`
	Generics []string `json:"generics,omitempty"`
	Params   string   `json:"params,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

// Child returns the first direct child with the given kind and name.
func (n *Node) Child(kind Kind, name string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Kind == kind && child.Name == name {
			return child
		}
	}
	return nil
}

// Tree is an immutable snapshot of a public API surface. Root is always a
// module; an empty root name marks the synthetic top level.
type Tree struct {
	Root *Node `json:"root"`
}

// Synthetic reports whether the root is the unnamed top level.
func (t *Tree) Synthetic() bool {
	return t != nil && t.Root != nil && t.Root.Name == ""
}

// NodeCount returns the number of declarations in the tree, excluding a synthetic root.
func (t *Tree) NodeCount() int {
	if t == nil || t.Root == nil {
		return 0
	}

	total := countNodes(t.Root)
	if t.Synthetic() {
		total--
	}
	return total
}

// CountByKind returns declaration totals per kind, excluding a synthetic root.
func (t *Tree) CountByKind() map[Kind]int {
	counts := map[Kind]int{}
	if t == nil || t.Root == nil {
		return counts
	}

	var walk func(node *Node)
	walk = func(node *Node) {
		counts[node.Kind]++
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(t.Root)
	if t.Synthetic() {
		counts[KindModule]--
		if counts[KindModule] == 0 {
			delete(counts, KindModule)
		}
	}
	return counts
}

func countNodes(node *Node) int {
	total := 1
	for _, child := range node.Children {
		total += countNodes(child)
	}
	return total
}

// Manifest is the on-disk form of a declaration list.
type Manifest struct {
	Root         string        `json:"root,omitempty" yaml:"root,omitempty"`
	Declarations []Declaration `json:"declarations" yaml:"declarations"`
}
