package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/forPelevin/hlshorts/internal/pipeline"
)

const maxDescriptionWidth = 48

func renderSummary(res pipeline.Result) string {
	tw := table.NewWriter()
	style := table.StyleRounded
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	tw.AppendHeader(table.Row{"#", "Range", "Duration", "Category", "Description", "Status"})

	asm := res.Assemble
	for _, rep := range asm.Segments {
		status := rep.Status
		if rep.Strategy != "" {
			status += " (" + rep.Strategy + ")"
		}
		seg := rep.Segment
		tw.AppendRow(table.Row{
			rep.Index + 1,
			fmt.Sprintf("%s-%s", clock(seg.StartTime), clock(seg.EndTime)),
			fmt.Sprintf("%.1fs", seg.Duration()),
			seg.Category,
			text.Trim(seg.Description, maxDescriptionWidth),
			status,
		})
	}
	for _, d := range asm.Dropped {
		seg := d.Segment
		tw.AppendRow(table.Row{
			"-",
			fmt.Sprintf("%s-%s", clock(seg.StartTime), clock(seg.EndTime)),
			fmt.Sprintf("%.1fs", seg.Duration()),
			seg.Category,
			text.Trim(seg.Description, maxDescriptionWidth),
			"dropped",
		})
	}
	tw.AppendFooter(table.Row{"", "", fmt.Sprintf("%.1fs", asm.OutputDuration), "", footerNote(res), ""})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}

func footerNote(res pipeline.Result) string {
	parts := []string{fmt.Sprintf("%d rendered", res.Assemble.Rendered)}
	if res.Source != "" {
		parts = append(parts, "source "+res.Source)
	}
	if res.Assemble.FadeApplied {
		parts = append(parts, "fade")
	}
	return strings.Join(parts, ", ")
}

// clock formats seconds as m:ss.
func clock(sec float64) string {
	total := int(sec + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
