// Package stats summarizes the shape of a surface tree.
package stats

import (
	"fmt"
	"sort"

	"github.com/odvcencio/apisurface/pkg/model"
	"github.com/odvcencio/apisurface/pkg/surface"
)

type Options struct {
	TopModules int
}

type KindCount struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

type ModuleMetric struct {
	Path     string `json:"path"`
	Children int    `json:"children"`
	Items    int    `json:"items"`
}

type Report struct {
	Root         string         `json:"root,omitempty"`
	NodeCount    int            `json:"node_count"`
	MaxDepth     int            `json:"max_depth"`
	Documented   int            `json:"documented"`
	Undocumented int            `json:"undocumented"`
	KindCounts   []KindCount    `json:"kind_counts,omitempty"`
	TopModules   []ModuleMetric `json:"top_modules,omitempty"`
}

func Build(tree *model.Tree, opts Options) (Report, error) {
	if tree == nil || tree.Root == nil {
		return Report{}, fmt.Errorf("tree is nil")
	}
	if opts.TopModules <= 0 {
		opts.TopModules = 10
	}

	report := Report{
		Root:      tree.Root.Name,
		NodeCount: tree.NodeCount(),
	}

	kindCounts := tree.CountByKind()
	for _, kind := range model.Kinds() {
		if count := kindCounts[kind]; count > 0 {
			report.KindCounts = append(report.KindCounts, KindCount{Kind: kind.String(), Count: count})
		}
	}
	sort.SliceStable(report.KindCounts, func(i, j int) bool {
		return report.KindCounts[i].Count > report.KindCounts[j].Count
	})

	var modules []ModuleMetric
	var walk func(node *model.Node, path string, depth int) int
	walk = func(node *model.Node, path string, depth int) int {
		items := 0
		for _, child := range node.Children {
			if child == nil {
				continue
			}
			items++
			report.count(child, depth+1)
			if child.Kind == model.KindModule {
				items += walk(child, joinPath(path, child.Name), depth+1)
			}
		}
		if path != "" {
			modules = append(modules, ModuleMetric{Path: path, Children: len(node.Children), Items: items})
		}
		return items
	}

	if tree.Synthetic() {
		walk(tree.Root, "", 0)
	} else {
		report.count(tree.Root, 1)
		walk(tree.Root, tree.Root.Name, 1)
	}

	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Items == modules[j].Items {
			return modules[i].Path < modules[j].Path
		}
		return modules[i].Items > modules[j].Items
	})
	if opts.TopModules < len(modules) {
		modules = modules[:opts.TopModules]
	}
	report.TopModules = modules
	return report, nil
}

func (r *Report) count(node *model.Node, depth int) {
	if depth > r.MaxDepth {
		r.MaxDepth = depth
	}
	if len(node.Doc) > 0 {
		r.Documented++
	} else {
		r.Undocumented++
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + surface.DefaultSeparator + name
}
