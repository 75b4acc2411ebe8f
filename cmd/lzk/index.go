package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazykit/lazykit/index"
	"github.com/lazykit/lazykit/manifest"
	"github.com/lazykit/lazykit/store"
)

func indexCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the project's import index image",
		Long: `index parses every .li import manifest in the project, snapshots the
import graph into the index image, and mirrors the references into the
usage store for lzk usages.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runIndexBuild(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "image output path (default from lazykit.toml)")
	return cmd
}

func runIndexBuild(output string) error {
	m, err := requireProject()
	if err != nil {
		return err
	}

	files, err := m.Sources()
	if err != nil {
		return err
	}

	img, err := index.Build(m.Project.Name, m.Project.Version, m.Dir, files)
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = m.IndexPath()
	}
	if err := index.WriteFile(path, img); err != nil {
		return err
	}

	if err := recordImage(m, img); err != nil {
		return err
	}

	fmt.Printf("indexed %d file(s), %d reference(s), %d module(s) -> %s\n",
		len(img.Files), img.TotalRefs(), len(img.Modules), displayPath(m, path))
	return nil
}

// recordImage mirrors the image's file entries into the usage store.
func recordImage(m *manifest.Manifest, img *index.Image) error {
	s, err := openProjectStore(m)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, entry := range img.Files {
		refs := make([]store.Ref, len(entry.Refs))
		for i, r := range entry.Refs {
			refs[i] = store.Ref{Module: r.Module, Name: r.Name, Line: r.Line}
		}
		if err := s.RecordFile(entry.Path, fmt.Sprintf("%x", entry.Digest), refs); err != nil {
			return err
		}
	}
	return nil
}
