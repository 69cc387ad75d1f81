package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/apisurface/pkg/surface"
)

const sampleManifest = `{
  "declarations": [
    {"kind": "module", "path": "sample_module"},
    {"kind": "function", "path": "sample_module::sample_function", "doc": ["This is a sample function"]},
    {"kind": "struct", "path": "sample_module::SampleStruct", "doc": ["This is a sample struct"]}
  ]
}`

const sampleOutput = "pub mod sample_module {\n" +
	"    /// This is a sample function\n" +
	"    pub fn sample_function()\n" +
	"    /// This is a sample struct\n" +
	"    pub struct SampleStruct {\n" +
	"    }\n" +
	"}\n"

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newCLI(&stdout, &stderr).Run(args)
	return stdout.String(), stderr.String(), err
}

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func assertExitCode(t *testing.T, err error, want int) {
	t.Helper()
	withCode, ok := err.(interface{ ExitCode() int })
	if !ok {
		t.Fatalf("expected exit code error, got %T: %v", err, err)
	}
	if got := withCode.ExitCode(); got != want {
		t.Fatalf("expected exit code %d, got %d (%v)", want, got, err)
	}
}

func TestRunRender(t *testing.T) {
	input := writeManifest(t, t.TempDir(), "api.json", sampleManifest)

	stdout, _, err := runCLI(t, "render", input)
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}
	if stdout != sampleOutput {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
}

func TestRunRenderToFileWithRoot(t *testing.T) {
	dir := t.TempDir()
	input := writeManifest(t, dir, "api.yaml", "declarations:\n  - {kind: fn, path: f, generics: [T]}\n")
	output := filepath.Join(dir, "api.rs")

	stdout, _, err := runCLI(t, "render", input, "--out", output, "--root", "crate")
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}
	if stdout != "" {
		t.Fatalf("expected nothing on stdout, got %q", stdout)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	want := "pub mod crate {\n    pub fn f<T>(v: &T)\n}\n"
	if string(data) != want {
		t.Fatalf("unexpected file content %q, want %q", data, want)
	}
}

func TestRunRenderJSON(t *testing.T) {
	input := writeManifest(t, t.TempDir(), "api.json", sampleManifest)

	stdout, _, err := runCLI(t, "render", input, "--json")
	if err != nil {
		t.Fatalf("render --json returned error: %v", err)
	}
	var tree struct {
		Root struct {
			Kind     string `json:"kind"`
			Children []struct {
				Kind string `json:"kind"`
				Name string `json:"name"`
			} `json:"children"`
		} `json:"root"`
	}
	if err := json.Unmarshal([]byte(stdout), &tree); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if tree.Root.Kind != "module" || len(tree.Root.Children) != 1 || tree.Root.Children[0].Name != "sample_module" {
		t.Fatalf("unexpected tree: %+v", tree)
	}
}

func TestRunRenderBuildError(t *testing.T) {
	input := writeManifest(t, t.TempDir(), "dup.json", `{"declarations": [{"kind": "fn", "path": "f"}, {"kind": "fn", "path": "f"}]}`)

	stdout, _, err := runCLI(t, "render", input)
	if err == nil {
		t.Fatal("expected duplicate declaration error")
	}
	if !errors.Is(err, surface.ErrDuplicateDeclaration) {
		t.Fatalf("expected ErrDuplicateDeclaration, got %v", err)
	}
	if stdout != "" {
		t.Fatalf("expected no partial output, got %q", stdout)
	}
}

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeManifest(t, dir, "good.json", sampleManifest)
	bad := writeManifest(t, dir, "bad.json", `{"declarations": [
		{"kind": "fn", "path": "a::"},
		{"kind": "fn", "path": "ok"},
		{"kind": "fn", "path": "ok"}
	]}`)

	stdout, _, err := runCLI(t, "check", good)
	if err != nil {
		t.Fatalf("check returned error: %v", err)
	}
	if !strings.Contains(stdout, "ok declarations=3") {
		t.Fatalf("unexpected check output %q", stdout)
	}

	stdout, _, err = runCLI(t, "check", good, bad)
	if err == nil {
		t.Fatal("expected check to fail")
	}
	assertExitCode(t, err, 1)
	if !errors.Is(err, surface.ErrMalformedPath) || !errors.Is(err, surface.ErrDuplicateDeclaration) {
		t.Fatalf("expected both problems reported, got %v", err)
	}
	if !strings.Contains(stdout, "good.json: ok") {
		t.Fatalf("expected good manifest to be reported, got %q", stdout)
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	first := writeManifest(t, dir, "first.json", `{"declarations": [{"kind": "fn", "path": "first"}]}`)
	second := writeManifest(t, dir, "second.yaml", "declarations:\n  - {kind: struct, path: Second}\n")

	stdout, _, err := runCLI(t, "batch", first, second, "--concurrency", "2")
	if err != nil {
		t.Fatalf("batch returned error: %v", err)
	}
	if stdout != "pub fn first()\npub struct Second {\n}\n" {
		t.Fatalf("unexpected stdout %q", stdout)
	}

	outDir := filepath.Join(dir, "out")
	stdout, _, err = runCLI(t, "batch", first, second, "--out-dir", outDir)
	if err != nil {
		t.Fatalf("batch --out-dir returned error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "second.rs"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "pub struct Second {\n}\n" {
		t.Fatalf("unexpected second.rs %q", data)
	}
	if !strings.Contains(stdout, "first.rs nodes=1") {
		t.Fatalf("expected summary line, got %q", stdout)
	}
}

func TestUsageErrors(t *testing.T) {
	input := writeManifest(t, t.TempDir(), "api.json", sampleManifest)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown command", args: []string{"unknown-command"}},
		{name: "missing manifest", args: []string{"render"}},
		{name: "unknown flag", args: []string{"render", input, "--bogus"}},
		{name: "bad log level", args: []string{"render", input, "--log-level", "loud"}},
		{name: "watch without out", args: []string{"watch", input}},
		{name: "batch json without out-dir", args: []string{"batch", input, "--json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatalf("expected usage error for %v", tt.args)
			}
			assertExitCode(t, err, exitUsage)
		})
	}
}

func TestRunVersion(t *testing.T) {
	stdout, _, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if stdout != "apisurface v"+version+"\n" {
		t.Fatalf("unexpected version output %q", stdout)
	}
}

func TestLogFormatFlag(t *testing.T) {
	input := writeManifest(t, t.TempDir(), "api.json", sampleManifest)

	_, stderr, err := runCLI(t, "render", input, "--log-format", "json", "--log-level", "info")
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}
	line := strings.TrimSpace(stderr)
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("expected a JSON log record on stderr, got %q", stderr)
	}
	if record["msg"] != "rendered surface" || record["nodes"] != float64(3) {
		t.Fatalf("unexpected log record %v", record)
	}
}

func TestOutputPathFor(t *testing.T) {
	if got := outputPathFor("out", filepath.Join("a", "api.v1.yaml")); got != filepath.Join("out", "api.v1.rs") {
		t.Fatalf("unexpected output path %q", got)
	}
}

func TestRunStats(t *testing.T) {
	input := writeManifest(t, t.TempDir(), "api.json", sampleManifest)

	stdout, _, err := runCLI(t, "stats", input, "--top", "5")
	if err != nil {
		t.Fatalf("stats returned error: %v", err)
	}
	for _, expected := range []string{"stats: nodes=3 depth=2 documented=2 undocumented=1", "kinds:", "  module count=1", "top modules (limit=5):", "  sample_module items=2 children=2"} {
		if !strings.Contains(stdout, expected) {
			t.Fatalf("expected output to contain %q, got:\n%s", expected, stdout)
		}
	}
}
