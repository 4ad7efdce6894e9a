// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package renderer turns composition results into terminal output: violation
// tables, plan summaries, and the descriptor dependency tree.
package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ddddddO/gtree"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/platform-engineering-labs/composa/internal/cli/display"
	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/emit"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

func RenderViolations(violations []model.Violation) (string, error) {
	if len(violations) == 0 {
		return display.Green("No violations found.\n"), nil
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On}},
		})))

	table.Header(display.LightBlue("Rule"),
		"Descriptor",
		display.Red("Severity"),
		"Detail")

	data := make([][]any, len(violations))
	for i, v := range violations {
		severity := display.Gold(string(v.Severity))
		if v.Severity == model.SeverityError {
			severity = display.Red(string(v.Severity))
		}

		data[i] = []any{
			display.LightBlue(v.Rule),
			v.Descriptor,
			severity,
			v.Detail,
		}
	}

	err := table.Bulk(data)
	if err != nil {
		return "", fmt.Errorf("error formatting violations: %v", err)
	}

	err = table.Render()
	if err != nil {
		return "", fmt.Errorf("error rendering violations: %v", err)
	}

	return buf.String(), nil
}

func RenderPlan(result *emit.PlanResult) (string, error) {
	if len(result.Changes) == 0 {
		return display.Green("No changes. The composition matches the snapshot.\n"), nil
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On}},
		})))

	table.Header(display.LightBlue("Kind"),
		"Key",
		display.Gold("Op"),
		"Patch")

	counts := map[emit.Op]int{}
	data := make([][]any, len(result.Changes))
	for i, change := range result.Changes {
		counts[change.Op]++

		op := display.Grey(string(change.Op))
		switch change.Op {
		case emit.OpCreate:
			op = display.Green(string(change.Op))
		case emit.OpUpdate:
			op = display.Gold(string(change.Op))
		case emit.OpDelete:
			op = display.Red(string(change.Op))
		}

		patch := ""
		if len(change.Patch) > 0 {
			patch = string(change.Patch)
		}

		data[i] = []any{
			display.LightBlue(string(change.Kind)),
			change.Key,
			op,
			patch,
		}
	}

	err := table.Bulk(data)
	if err != nil {
		return "", fmt.Errorf("error formatting plan: %v", err)
	}

	err = table.Render()
	if err != nil {
		return "", fmt.Errorf("error rendering plan: %v", err)
	}

	buf.WriteString(fmt.Sprintf("\nPlan: %s, %s, %s, %s\n",
		display.Greenf("%d to create", counts[emit.OpCreate]),
		display.Goldf("%d to update", counts[emit.OpUpdate]),
		display.Redf("%d to delete", counts[emit.OpDelete]),
		display.Greyf("%d unchanged", counts[emit.OpNoop])))

	return buf.String(), nil
}

// RenderGraph draws the descriptors grouped by kind, with each descriptor's
// dependency edges as children.
func RenderGraph(g *compose.Graph) (string, error) {
	root := gtree.NewRoot(display.Gold(fmt.Sprintf("pass %s", g.PassID)))

	byKind := make(map[model.Kind][]model.ResourceDescriptor)
	var kinds []string
	for _, descriptor := range g.Descriptors {
		if _, seen := byKind[descriptor.Kind]; !seen {
			kinds = append(kinds, string(descriptor.Kind))
		}
		byKind[descriptor.Kind] = append(byKind[descriptor.Kind], descriptor)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		kindNode := root.Add(display.LightBlue(kind))
		for _, descriptor := range byKind[model.Kind(kind)] {
			node := kindNode.Add(display.Green(descriptor.Key))
			for _, dep := range descriptor.DependsOn {
				node.Add(display.Grey("depends on " + dep))
			}
		}
	}

	var buf strings.Builder
	if err := gtree.OutputFromRoot(&buf, root); err != nil {
		return "", fmt.Errorf("error rendering graph: %v", err)
	}

	return buf.String(), nil
}
