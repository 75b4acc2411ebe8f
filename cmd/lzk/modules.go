package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func modulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List importable modules",
		Long: `modules lists the module catalog: the builtin std modules plus any
namespaces the project manifest declares.`,
		Args: cobra.NoArgs,
		RunE: runModules,
	}
	return cmd
}

func runModules(_ *cobra.Command, _ []string) error {
	m, err := loadProject()
	if err != nil {
		return err
	}

	catalog := buildCatalog(m)

	tbl := newTable()
	tbl.AppendHeader(table.Row{"MODULE", "EXPORTS", "DOC"})
	for _, path := range catalog.Paths() {
		info, _ := catalog.Lookup(path)
		tbl.AppendRow(table.Row{info.Path, len(info.Exports), docSummary(info.Doc)})
	}
	fmt.Println(tbl.Render())
	return nil
}
