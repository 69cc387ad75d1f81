// Package manifest decodes declaration manifests written by external front-ends.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/apisurface/pkg/model"
)

// ErrUnsupportedFormat is returned for files whose extension has no registered decoder.
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// Decoder converts manifest source into declarations.
type Decoder interface {
	// Format returns the name of the format this decoder handles.
	Format() string
	// Decode parses src; path is used for diagnostics only.
	Decode(path string, src []byte) (model.Manifest, error)
}

// Registry selects a Decoder by file extension.
type Registry struct {
	decoders map[string]Decoder
}

// NewRegistry returns a registry with the JSON, YAML and HCL decoders registered.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]Decoder)}
	r.Register(".json", JSONDecoder{})
	r.Register(".yaml", YAMLDecoder{})
	r.Register(".yml", YAMLDecoder{})
	r.Register(".hcl", HCLDecoder{})
	return r
}

func (r *Registry) Register(extension string, decoder Decoder) {
	if decoder == nil {
		return
	}
	normalized := normalizeExtension(extension)
	if normalized == "" {
		return
	}
	r.decoders[normalized] = decoder
}

// Extensions lists registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) DecoderFor(path string) (Decoder, bool) {
	decoder, ok := r.decoders[strings.ToLower(filepath.Ext(path))]
	return decoder, ok
}

// Decode picks a decoder from path's extension and decodes src.
func (r *Registry) Decode(path string, src []byte) (model.Manifest, error) {
	decoder, ok := r.DecoderFor(path)
	if !ok {
		return model.Manifest{}, fmt.Errorf("%s: %w (known: %s)", path, ErrUnsupportedFormat, strings.Join(r.Extensions(), ", "))
	}

	m, err := decoder.Decode(path, src)
	if err != nil {
		return model.Manifest{}, fmt.Errorf("decode %s manifest %s: %w", decoder.Format(), path, err)
	}
	return m, nil
}

// Load reads and decodes the manifest at path.
func (r *Registry) Load(path string) (model.Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return model.Manifest{}, err
	}
	return r.Decode(path, src)
}

func normalizeExtension(extension string) string {
	normalized := strings.ToLower(strings.TrimSpace(extension))
	if normalized == "" {
		return ""
	}
	if normalized[0] != '.' {
		normalized = "." + normalized
	}
	return normalized
}
