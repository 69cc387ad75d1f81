package stats

import (
	"testing"

	"github.com/odvcencio/apisurface/pkg/model"
	"github.com/odvcencio/apisurface/pkg/surface"
)

func buildTree(t *testing.T, opts ...surface.Option) *model.Tree {
	t.Helper()
	tree, err := surface.Build([]model.Declaration{
		{Kind: model.KindModule, Path: "a", Doc: []string{"A"}},
		{Kind: model.KindFunction, Path: "a::f", Doc: []string{"F"}},
		{Kind: model.KindStruct, Path: "a::b::S"},
		{Kind: model.KindTrait, Path: "T"},
	}, opts...)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	return tree
}

func TestBuildAggregatesCounts(t *testing.T) {
	report, err := Build(buildTree(t), Options{TopModules: 1})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if report.Root != "" || report.NodeCount != 5 || report.MaxDepth != 3 {
		t.Fatalf("unexpected report totals: %+v", report)
	}
	if report.Documented != 2 || report.Undocumented != 3 {
		t.Fatalf("unexpected doc coverage: %+v", report)
	}
	if len(report.KindCounts) != 4 {
		t.Fatalf("expected 4 kind counts, got %+v", report.KindCounts)
	}
	if report.KindCounts[0].Kind != "module" || report.KindCounts[0].Count != 2 {
		t.Fatalf("unexpected top kind count: %+v", report.KindCounts[0])
	}
	if report.KindCounts[1].Kind != "function" {
		t.Fatalf("equal counts should keep kind order, got %+v", report.KindCounts)
	}
	if len(report.TopModules) != 1 {
		t.Fatalf("expected TopModules to be limited to 1, got %+v", report.TopModules)
	}
	if top := report.TopModules[0]; top.Path != "a" || top.Children != 2 || top.Items != 3 {
		t.Fatalf("unexpected top module: %+v", top)
	}
}

func TestBuildNamedRoot(t *testing.T) {
	report, err := Build(buildTree(t, surface.WithRootName("crate")), Options{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if report.Root != "crate" || report.NodeCount != 6 || report.MaxDepth != 4 {
		t.Fatalf("unexpected report totals: %+v", report)
	}
	if report.Undocumented != 4 {
		t.Fatalf("expected root to count as undocumented, got %+v", report)
	}
	var paths []string
	for _, module := range report.TopModules {
		paths = append(paths, module.Path)
	}
	want := []string{"crate", "crate::a", "crate::a::b"}
	if len(paths) != len(want) {
		t.Fatalf("unexpected modules %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("unexpected modules %v, want %v", paths, want)
		}
	}
}

func TestBuildNilTree(t *testing.T) {
	if _, err := Build(nil, Options{}); err == nil {
		t.Fatal("expected nil tree to fail")
	}
	if _, err := Build(&model.Tree{}, Options{}); err == nil {
		t.Fatal("expected tree without root to fail")
	}
}
