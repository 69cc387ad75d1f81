// Package surface builds immutable API surface trees from ordered declaration records.
package surface

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/odvcencio/apisurface/pkg/model"
)

// DefaultSeparator joins the segments of a fully-qualified path.
const DefaultSeparator = "::"

type Option func(*Builder)

// WithRootName gives the root module an explicit name, such as "crate".
// A name that is not an identifier makes every Add fail with ErrMalformedPath.
func WithRootName(name string) Option {
	return func(b *Builder) {
		name = strings.TrimSpace(name)
		b.root.Name = name
		b.rootErr = nil
		if name != "" && !isIdentifier(name) {
			b.rootErr = fmt.Errorf("root module %q: %w: invalid identifier", name, ErrMalformedPath)
		}
	}
}

// WithSeparator changes the path separator; an empty separator keeps the default.
func WithSeparator(separator string) Option {
	return func(b *Builder) {
		if separator != "" {
			b.separator = separator
		}
	}
}

// Builder inserts declarations into a surface tree in declaration order.
// A Builder is not safe for concurrent use.
type Builder struct {
	separator string
	root      *model.Node
	// modules maps a canonical module path to its node; "" is the root.
	modules map[string]*model.Node
	// declared holds kind|path keys of explicit declarations.
	declared map[string]bool
	added    int
	rootErr  error
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		separator: DefaultSeparator,
		root:      &model.Node{Kind: model.KindModule},
		declared:  make(map[string]bool),
	}
	b.modules = map[string]*model.Node{"": b.root}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build turns an ordered declaration list into a tree, stopping at the first error.
func Build(decls []model.Declaration, opts ...Option) (*model.Tree, error) {
	b := NewBuilder(opts...)
	if b.rootErr != nil {
		return nil, b.rootErr
	}
	for _, decl := range decls {
		if err := b.Add(decl); err != nil {
			return nil, err
		}
	}
	return b.Tree(), nil
}

// Validate runs every declaration through a fresh builder and reports all
// failures instead of the first one. It returns nil when the list builds cleanly.
func Validate(decls []model.Declaration, opts ...Option) error {
	b := NewBuilder(opts...)
	if b.rootErr != nil {
		return b.rootErr
	}
	var result *multierror.Error
	for _, decl := range decls {
		if err := b.Add(decl); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Add inserts one declaration. A failed Add leaves the builder unchanged.
func (b *Builder) Add(decl model.Declaration) error {
	if b.rootErr != nil {
		return b.rootErr
	}
	index := b.added
	b.added++

	fail := func(err error) error {
		return &DeclarationError{Index: index, Kind: decl.Kind, Path: decl.Path, Err: err}
	}

	if !decl.Kind.Valid() {
		return fail(fmt.Errorf("%w: unknown kind", ErrInvalidDeclaration))
	}

	segments, err := splitPath(decl.Path, b.separator)
	if err != nil {
		return fail(err)
	}

	if decl.Kind == model.KindModule && len(decl.Generics) > 0 {
		return fail(fmt.Errorf("%w: modules take no generic parameters", ErrInvalidGeneric))
	}
	for _, generic := range decl.Generics {
		if !isIdentifier(generic) {
			return fail(fmt.Errorf("%w: %q", ErrInvalidGeneric, generic))
		}
	}
	if decl.Kind != model.KindFunction && strings.TrimSpace(decl.Params) != "" {
		return fail(fmt.Errorf("%w: only functions record parameters", ErrInvalidDeclaration))
	}
	if strings.ContainsAny(decl.Params, "\r\n") {
		return fail(fmt.Errorf("%w: parameters must fit on one line", ErrInvalidDeclaration))
	}

	fullPath := strings.Join(segments, DefaultSeparator)
	key := decl.Kind.String() + "|" + fullPath
	if b.declared[key] {
		return fail(ErrDuplicateDeclaration)
	}

	parent := b.ensureModules(segments[:len(segments)-1])
	name := segments[len(segments)-1]
	doc := splitDocLines(decl.Doc)

	if decl.Kind == model.KindModule {
		if existing, ok := b.modules[fullPath]; ok {
			existing.Doc = doc
		} else {
			node := &model.Node{Kind: model.KindModule, Name: name, Doc: doc}
			parent.Children = append(parent.Children, node)
			b.modules[fullPath] = node
		}
		b.declared[key] = true
		return nil
	}

	node := &model.Node{
		Kind:     decl.Kind,
		Name:     name,
		Doc:      doc,
		Generics: append([]string(nil), decl.Generics...),
	}
	if decl.Kind == model.KindFunction {
		node.Params = functionParams(decl)
	}
	parent.Children = append(parent.Children, node)
	b.declared[key] = true
	return nil
}

// Tree returns a snapshot of everything added so far. Later Adds do not
// affect a returned tree.
func (b *Builder) Tree() *model.Tree {
	return &model.Tree{Root: cloneNode(b.root)}
}

func (b *Builder) ensureModules(segments []string) *model.Node {
	current := b.root
	for i := range segments {
		path := strings.Join(segments[:i+1], DefaultSeparator)
		next, ok := b.modules[path]
		if !ok {
			next = &model.Node{Kind: model.KindModule, Name: segments[i]}
			current.Children = append(current.Children, next)
			b.modules[path] = next
		}
		current = next
	}
	return current
}

// functionParams returns the recorded parameter text. Without one, a generic
// function gets the shape-only placeholder "v: &T" over its first parameter.
func functionParams(decl model.Declaration) string {
	if params := strings.TrimSpace(decl.Params); params != "" {
		return params
	}
	if len(decl.Generics) > 0 {
		return "v: &" + decl.Generics[0]
	}
	return ""
}

func splitDocLines(doc []string) []string {
	if len(doc) == 0 {
		return nil
	}

	lines := make([]string, 0, len(doc))
	for _, entry := range doc {
		for _, line := range strings.Split(entry, "\n") {
			lines = append(lines, strings.TrimSuffix(line, "\r"))
		}
	}
	return lines
}

func cloneNode(node *model.Node) *model.Node {
	clone := &model.Node{
		Kind:     node.Kind,
		Name:     node.Name,
		Doc:      append([]string(nil), node.Doc...),
		Generics: append([]string(nil), node.Generics...),
		Params:   node.Params,
	}
	if len(node.Children) > 0 {
		clone.Children = make([]*model.Node, 0, len(node.Children))
		for _, child := range node.Children {
			clone.Children = append(clone.Children, cloneNode(child))
		}
	}
	return clone
}
