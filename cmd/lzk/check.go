package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lazykit/lazykit/manifest"
	"github.com/lazykit/lazykit/server"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Check .li import manifests for problems",
		Long: `check parses .li import manifests and reports syntax errors,
unsupported import forms, and references to modules or exports the
catalog does not know.

With file arguments, only those files are checked. Without arguments
the project's configured source directories are scanned.

Examples:
  lzk check
  lzk check imports/app.li
`,
		RunE: runCheck,
	}
	return cmd
}

func runCheck(_ *cobra.Command, args []string) error {
	m, err := loadProject()
	if err != nil {
		return err
	}

	files := args
	if len(files) == 0 {
		if m == nil {
			return fmt.Errorf("no %s found in or above %s (pass .li files explicitly)", manifest.Filename, flagDir)
		}
		files, err = m.Sources()
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("no .li files found")
			return nil
		}
	}

	catalog := buildCatalog(m)

	var errs, warnings int
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}

		for _, f := range server.Analyze(string(data), catalog) {
			printFinding(displayPath(m, file), f)
			if f.Severity == server.SeverityError {
				errs++
			} else {
				warnings++
			}
		}
	}

	switch {
	case errs > 0:
		return fmt.Errorf("%d error(s), %d warning(s) in %d file(s)", errs, warnings, len(files))
	case warnings > 0:
		fmt.Printf("%d warning(s) in %d file(s)\n", warnings, len(files))
	default:
		color.New(color.FgGreen).Printf("%d file(s) OK\n", len(files))
	}
	return nil
}

func printFinding(path string, f server.Finding) {
	label := color.New(color.FgRed).Sprint("error")
	if f.Severity == server.SeverityWarning {
		label = color.New(color.FgYellow).Sprint("warning")
	}
	fmt.Printf("%s:%d:%d: %s: %s\n", path, f.Pos.Line, f.Pos.Column, label, f.Message)
}
