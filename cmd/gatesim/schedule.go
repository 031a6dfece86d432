package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/delaneyj/bitparty/cmd/gatesim/templates"
	"github.com/delaneyj/bitparty/logic"
	"github.com/delaneyj/bitparty/simulator"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

func schedule(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	acc, err := newAccumulator(int(cmd.Int(bitsKey)))
	if err != nil {
		return err
	}
	sim, err := acc.simulator(int(cmd.Int(workersKey)), newLogProgress())
	if err != nil {
		return err
	}
	defer sim.Shutdown()

	switch format := cmd.String(formatKey); format {
	case "table":
		renderTable(sim)
	case "dot":
		levels, edges := scheduleGraph(sim)
		templates.WriteScheduleDOT(os.Stdout, "accumulator", levels, edges)
	default:
		return errors.Errorf("unknown format %q", format)
	}
	return nil
}

func renderTable(sim *simulator.Simulator) {
	tbl := table.NewWriter()
	tbl.SetTitle(fmt.Sprintf("Schedule: %d calculators, %d levels", sim.Len(), sim.Levels()))
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"priority", "group", "order", "number", "calculator", "inputs", "outputs"})

	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		tbl.SetStyle(table.StyleLight)
		if width, _, err := term.GetSize(fd); err == nil {
			tbl.SetAllowedRowLength(width)
		}
	}

	for _, p := range sim.Placements() {
		tbl.AppendRow(table.Row{
			p.Priority,
			p.Group,
			p.Order,
			p.Number,
			p.Calculator,
			bitNames(p.Calculator.Inputs()),
			bitNames(p.Calculator.Outputs()),
		})
	}
	tbl.Render()
}

func bitNames(bits []*logic.SignalBit) string {
	names := make([]string, len(bits))
	for i, b := range bits {
		names[i] = b.Name()
	}
	return strings.Join(names, " ")
}

// scheduleGraph arranges the placements by level and group, and lists the
// data edges between calculators.
func scheduleGraph(sim *simulator.Simulator) ([]templates.Level, []templates.Edge) {
	placements := sim.Placements()
	ids := make(map[logic.Calculator]int, len(placements))

	var levels []templates.Level
	for i, p := range placements {
		ids[p.Calculator] = i
		if len(levels) == 0 || levels[len(levels)-1].Priority != p.Priority {
			levels = append(levels, templates.Level{Priority: p.Priority})
		}
		lvl := &levels[len(levels)-1]
		if len(lvl.Groups) == 0 || lvl.Groups[len(lvl.Groups)-1].Index != p.Group {
			lvl.Groups = append(lvl.Groups, templates.Group{Index: p.Group})
		}
		g := &lvl.Groups[len(lvl.Groups)-1]
		for len(g.Ranks) <= p.Order {
			g.Ranks = append(g.Ranks, nil)
		}
		g.Ranks[p.Order] = append(g.Ranks[p.Order], i)
		g.Nodes = append(g.Nodes, templates.Node{
			ID:     i,
			Label:  fmt.Sprint(p.Calculator),
			Order:  p.Order,
			Number: p.Number,
		})
	}

	var edges []templates.Edge
	for i, p := range placements {
		for _, b := range p.Calculator.Outputs() {
			for _, r := range sim.Readers(b) {
				edges = append(edges, templates.Edge{From: i, To: ids[r], Label: b.Name()})
			}
		}
	}
	return levels, edges
}
