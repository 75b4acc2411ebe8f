package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func usagesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "usages",
		Short: "Report module usage from the project store",
		Long: `usages reads the usage store and reports the most referenced modules,
references that never resolved, load statistics, and recent resolution
failures. Run lzk index first to populate the reference tables.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runUsages(limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum modules listed (0 for all)")
	return cmd
}

func runUsages(limit int) error {
	m, err := requireProject()
	if err != nil {
		return err
	}

	s, err := openProjectStore(m)
	if err != nil {
		return err
	}
	defer s.Close()

	nFiles, err := s.FileCount()
	if err != nil {
		return err
	}
	nRefs, err := s.RefCount()
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d file(s), %d reference(s)\n", m.Project.Name, nFiles, nRefs)

	top, err := s.TopModules(limit)
	if err != nil {
		return err
	}
	if len(top) > 0 {
		tbl := newTable()
		tbl.AppendHeader(table.Row{"MODULE", "REFS"})
		for _, u := range top {
			tbl.AppendRow(table.Row{u.Module, u.Refs})
		}
		fmt.Printf("\nMost referenced modules:\n%s\n", tbl.Render())
	}

	unresolved, err := s.UnresolvedRefs()
	if err != nil {
		return err
	}
	if len(unresolved) > 0 {
		tbl := newTable()
		tbl.AppendHeader(table.Row{"FILE", "LINE", "IMPORT"})
		for _, u := range unresolved {
			tbl.AppendRow(table.Row{u.Path, u.Line, u.Module + "." + u.Name})
		}
		fmt.Printf("\nNever resolved:\n%s\n", tbl.Render())
	}

	loads, err := s.ModuleLoads()
	if err != nil {
		return err
	}
	if len(loads) > 0 {
		tbl := newTable()
		tbl.AppendHeader(table.Row{"MODULE", "LOADS", "AVG"})
		for _, st := range loads {
			tbl.AppendRow(table.Row{st.Module, st.Loads, time.Duration(st.AvgMicros) * time.Microsecond})
		}
		fmt.Printf("\nModule loads:\n%s\n", tbl.Render())
	}

	failed, err := s.FailedResolutions()
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		tbl := newTable()
		tbl.AppendHeader(table.Row{"IMPORT", "ERROR", "AT"})
		for _, r := range failed {
			tbl.AppendRow(table.Row{r.Module + "." + r.Name, r.Error, r.At.Format(time.RFC3339)})
		}
		fmt.Printf("\nResolution failures:\n%s\n", tbl.Render())
	}

	return nil
}

// newTable creates a plain table writer: light style, no borders or
// separators, just aligned columns.
func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false
	return tbl
}
