// Package render prints surface trees as compact, brace-delimited pseudo-declarations.
//
// Output is byte-for-byte stable for a given tree: nodes are visited in slice
// order, every line ends in a newline, and no blank lines are emitted.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/odvcencio/apisurface/pkg/model"
)

// ErrUnrenderableNode reports a node outside the closed kind set, or a missing tree.
var ErrUnrenderableNode = errors.New("unrenderable node")

const (
	indentUnit = "    "
	docPrefix  = "///"
)

// Render returns the text form of tree.
func Render(tree *model.Tree) (string, error) {
	var buf bytes.Buffer
	if err := renderTree(&buf, tree); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write renders tree into w. Nothing is written when rendering fails.
func Write(w io.Writer, tree *model.Tree) error {
	var buf bytes.Buffer
	if err := renderTree(&buf, tree); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func renderTree(buf *bytes.Buffer, tree *model.Tree) error {
	if tree == nil || tree.Root == nil {
		return fmt.Errorf("%w: nil tree", ErrUnrenderableNode)
	}
	if tree.Root.Kind != model.KindModule {
		return fmt.Errorf("%w: root must be a module, got %s", ErrUnrenderableNode, tree.Root.Kind)
	}

	if tree.Synthetic() {
		for _, child := range tree.Root.Children {
			if err := renderNode(buf, child, 0); err != nil {
				return err
			}
		}
		return nil
	}
	return renderNode(buf, tree.Root, 0)
}

func renderNode(buf *bytes.Buffer, node *model.Node, depth int) error {
	if node == nil {
		return fmt.Errorf("%w: nil node at depth %d", ErrUnrenderableNode, depth)
	}

	indent := strings.Repeat(indentUnit, depth)
	switch node.Kind {
	case model.KindModule:
		writeDoc(buf, indent, node.Doc)
		fmt.Fprintf(buf, "%spub mod %s {\n", indent, node.Name)
		for _, child := range node.Children {
			if err := renderNode(buf, child, depth+1); err != nil {
				return err
			}
		}
		fmt.Fprintf(buf, "%s}\n", indent)
	case model.KindFunction:
		writeDoc(buf, indent, node.Doc)
		fmt.Fprintf(buf, "%spub fn %s%s(%s)\n", indent, node.Name, genericList(node.Generics), node.Params)
	case model.KindStruct:
		writeDoc(buf, indent, node.Doc)
		fmt.Fprintf(buf, "%spub struct %s%s {\n%s}\n", indent, node.Name, genericList(node.Generics), indent)
	case model.KindTrait:
		writeDoc(buf, indent, node.Doc)
		fmt.Fprintf(buf, "%spub trait %s%s {\n%s}\n", indent, node.Name, genericList(node.Generics), indent)
	default:
		return fmt.Errorf("%w: %q has kind %s", ErrUnrenderableNode, node.Name, node.Kind)
	}
	return nil
}

func writeDoc(buf *bytes.Buffer, indent string, lines []string) {
	for _, line := range lines {
		buf.WriteString(indent)
		buf.WriteString(docPrefix)
		if line != "" {
			buf.WriteByte(' ')
			buf.WriteString(line)
		}
		buf.WriteByte('\n')
	}
}

func genericList(generics []string) string {
	if len(generics) == 0 {
		return ""
	}
	return "<" + strings.Join(generics, ", ") + ">"
}
