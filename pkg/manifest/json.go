package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/odvcencio/apisurface/pkg/model"
)

type JSONDecoder struct{}

func (JSONDecoder) Format() string {
	return "json"
}

func (JSONDecoder) Decode(_ string, src []byte) (model.Manifest, error) {
	decoder := json.NewDecoder(bytes.NewReader(src))
	decoder.DisallowUnknownFields()

	var m model.Manifest
	if err := decoder.Decode(&m); err != nil {
		return model.Manifest{}, err
	}
	if decoder.More() {
		return model.Manifest{}, errors.New("unexpected data after manifest object")
	}
	return m, nil
}

type YAMLDecoder struct{}

func (YAMLDecoder) Format() string {
	return "yaml"
}

// Decode treats an empty document as an empty manifest.
func (YAMLDecoder) Decode(_ string, src []byte) (model.Manifest, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(src))
	decoder.KnownFields(true)

	var m model.Manifest
	if err := decoder.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Manifest{}, nil
		}
		return model.Manifest{}, err
	}
	return m, nil
}
