package main

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/lazykit/lazykit/server"
)

var log = commonlog.GetLogger("lazykit.cli")

func lspCmd() *cobra.Command {
	var verbosity int
	var logPath string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Serve the language server on stdio",
		Long: `lsp starts the Lazykit language server, speaking LSP over stdio.
Editors get live diagnostics, completion for module paths and exported
names, and hover docs for .li import manifests.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runLSP(verbosity, logPath)
		},
	}

	cmd.Flags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")
	cmd.Flags().StringVar(&logPath, "log", "", "log file path (default stderr; stdout carries the protocol)")
	return cmd
}

func runLSP(verbosity int, logPath string) error {
	var path *string
	if logPath != "" {
		path = &logPath
	}
	commonlog.Configure(verbosity, path)

	m, err := loadProject()
	if err != nil {
		return err
	}

	catalog := buildCatalog(m)
	if m != nil {
		log.Infof("project %s (%d module(s) in catalog)", m.Project.Name, catalog.Len())
	} else {
		log.Infof("no project manifest; serving builtin catalog (%d module(s))", catalog.Len())
	}

	return server.NewLSP(catalog).Run()
}
