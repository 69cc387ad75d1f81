package manifest

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/odvcencio/apisurface/pkg/model"
)

// HCLDecoder reads manifests of the form
//
//	root = "crate"
//	declaration "function" "docs::foo" {
//	  doc      = ["Frobnicates a value."]
//	  generics = ["T", "V"]
//	}
//
// doc may also be a single string; a heredoc becomes one line per text line
// and an empty string means no doc.
type HCLDecoder struct{}

type hclManifest struct {
	Root         string            `hcl:"root,optional"`
	Declarations []*hclDeclaration `hcl:"declaration,block"`
}

type hclDeclaration struct {
	Kind     string         `hcl:"kind,label"`
	Path     string         `hcl:"path,label"`
	Doc      hcl.Expression `hcl:"doc,optional"`
	Generics []string       `hcl:"generics,optional"`
	Params   string         `hcl:"params,optional"`
}

func (HCLDecoder) Format() string {
	return "hcl"
}

func (HCLDecoder) Decode(path string, src []byte) (model.Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return model.Manifest{}, fmt.Errorf("parse: %w", diags)
	}

	var parsed hclManifest
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return model.Manifest{}, fmt.Errorf("decode: %w", diags)
	}

	m := model.Manifest{
		Root:         parsed.Root,
		Declarations: make([]model.Declaration, 0, len(parsed.Declarations)),
	}
	for _, block := range parsed.Declarations {
		kind, err := model.ParseKind(block.Kind)
		if err != nil {
			return model.Manifest{}, fmt.Errorf("declaration %q: %w", block.Path, err)
		}
		doc, err := docLines(block.Doc)
		if err != nil {
			return model.Manifest{}, fmt.Errorf("declaration %q: %w", block.Path, err)
		}
		m.Declarations = append(m.Declarations, model.Declaration{
			Kind:     kind,
			Path:     block.Path,
			Doc:      doc,
			Generics: block.Generics,
			Params:   block.Params,
		})
	}
	return m, nil
}

// docLines accepts a string or a list of strings. Absent doc decodes as null.
func docLines(expr hcl.Expression) ([]string, error) {
	if expr == nil {
		return nil, nil
	}

	value, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("doc: %w", diags)
	}
	if value.IsNull() {
		return nil, nil
	}
	if !value.IsWhollyKnown() {
		return nil, fmt.Errorf("doc: value must be known")
	}

	valueType := value.Type()
	switch {
	case valueType == cty.String:
		text := strings.TrimSuffix(value.AsString(), "\n")
		if text == "" {
			return nil, nil
		}
		return strings.Split(text, "\n"), nil
	case valueType.IsListType() || valueType.IsTupleType():
		lines := make([]string, 0, value.LengthInt())
		for it := value.ElementIterator(); it.Next(); {
			_, element := it.Element()
			if element.IsNull() || element.Type() != cty.String {
				return nil, fmt.Errorf("doc: list elements must be strings, got %s", element.Type().FriendlyName())
			}
			lines = append(lines, element.AsString())
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("doc: expected string or list of strings, got %s", valueType.FriendlyName())
	}
}
