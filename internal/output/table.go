package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/FUNGYICHEN/AGG/internal/domain"
)

// WriteTables renders the grouped error views as aligned tables: one for
// per-agent groups, one for widespread game groups and one for raw lines.
// Empty views are skipped.
func WriteTables(w io.Writer, agg domain.Aggregate, opts FormatOptions) error {
	opts = opts.normalized()
	widespread := Widespread(agg, opts.WidespreadAgentThreshold)
	covered := coverSet(widespread)

	var agentRows [][]string
	for _, g := range agg.ByAgent {
		ids := visible(g, covered)
		if len(ids) == 0 {
			continue
		}
		games := strings.Join(ids, ", ")
		if len(ids) >= opts.ItemizeThreshold {
			games = strconv.Itoa(len(ids)) + " 個"
		}
		agentRows = append(agentRows, []string{g.Brand, g.Agent, games, g.Signature, strconv.Itoa(g.Count)})
	}
	if len(agentRows) > 0 {
		if err := renderTable(w, []any{"brand", "agent", "game ids", "error", "count"}, agentRows); err != nil {
			return err
		}
	}

	if len(widespread) > 0 {
		rows := make([][]string, 0, len(widespread))
		for _, g := range widespread {
			rows = append(rows, []string{g.Brand, g.GameID, g.Signature, strconv.Itoa(len(g.Agents)), strconv.Itoa(g.Count)})
		}
		if err := renderTable(w, []any{"brand", "game id", "error", "agents", "count"}, rows); err != nil {
			return err
		}
	}

	if len(agg.Raw) > 0 {
		rows := make([][]string, 0, len(agg.Raw))
		for _, r := range agg.Raw {
			rows = append(rows, []string{r.Raw, strconv.Itoa(r.Count)})
		}
		if err := renderTable(w, []any{"line", "count"}, rows); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(w io.Writer, header []any, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
