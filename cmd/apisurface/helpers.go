package main

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
)

func emitJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// outputPathFor maps a manifest to <dir>/<base>.rs.
func outputPathFor(dir, input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+".rs")
}
