package commands

import (
	"fmt"
	"io"

	"lkcrawl/internal/tasks"

	"github.com/jedib0t/go-pretty/v6/table"
)

func printCookies(w io.Writer, liAt, jsessionID string) {
	fmt.Fprintln(w, "-----------------------")
	fmt.Fprintf(w, "li_at:      %s\njsessionip: %s\n", liAt, jsessionID)
	fmt.Fprintln(w, "-----------------------")
}

func renderReport(w io.Writer, r tasks.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Crawl summary")
	t.AppendHeader(table.Row{"", "Count"})
	t.AppendRows([]table.Row{
		{"Stocks handled", r.Seen},
		{"Skipped: empty query", r.SkippedEmptyQuery},
		{"Skipped: no match", r.SkippedNoMatch},
		{"Skipped: already stored", r.SkippedKnown},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Companies", r.Companies},
		{"Locations", r.Locations},
		{"People", r.People},
		{"Education", r.Education},
		{"Experience", r.Experience},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
