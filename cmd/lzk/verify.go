package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lazykit/lazykit/index"
)

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the index image against the sources on disk",
		Long: `verify reads the project's index image and compares it with the .li
files currently on disk, reporting changed, missing, and unindexed
files. A current index exits zero.`,
		Args: cobra.NoArgs,
		RunE: runVerify,
	}
	return cmd
}

func runVerify(_ *cobra.Command, _ []string) error {
	m, err := requireProject()
	if err != nil {
		return err
	}

	img, err := index.ReadFile(m.IndexPath())
	if err != nil {
		return fmt.Errorf("%w (run lzk index first)", err)
	}

	files, err := m.Sources()
	if err != nil {
		return err
	}

	drift, err := img.Verify(m.Dir, files)
	if err != nil {
		return err
	}

	if len(drift) == 0 {
		color.New(color.FgGreen).Printf("index is current (%d file(s), %d reference(s))\n",
			len(img.Files), img.TotalRefs())
		return nil
	}

	for _, d := range drift {
		fmt.Printf("%s %s\n", color.New(color.FgRed).Sprintf("%s:", d.Reason), d.Path)
	}
	return fmt.Errorf("index is stale: %d file(s) drifted (rerun lzk index)", len(drift))
}
