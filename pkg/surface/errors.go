package surface

import (
	"errors"
	"fmt"

	"github.com/odvcencio/apisurface/pkg/model"
)

var (
	// ErrMalformedPath reports an empty path, an empty segment, or a segment that is not an identifier.
	ErrMalformedPath = errors.New("malformed path")
	// ErrDuplicateDeclaration reports two declarations with the same kind and fully-qualified path.
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
	// ErrInvalidGeneric reports a generic parameter that is not an identifier, or generics on a module.
	ErrInvalidGeneric = errors.New("invalid generic parameter")
	// ErrInvalidDeclaration reports an unknown kind or attributes the kind cannot carry.
	ErrInvalidDeclaration = errors.New("invalid declaration")
)

// DeclarationError identifies the declaration a build failure belongs to.
type DeclarationError struct {
	// Index is the zero-based position of the declaration in the input.
	Index int
	Kind  model.Kind
	Path  string
	Err   error
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("declaration %d (%s %q): %v", e.Index, e.Kind, e.Path, e.Err)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}
