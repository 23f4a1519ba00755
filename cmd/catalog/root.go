// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/kinora/internal/core/movie"
	"github.com/taibuivan/kinora/internal/platform/sanity"
)

// sourceOptions selects where the catalog is loaded from.
type sourceOptions struct {
	source  string
	project string
	dataset string
	version string
	useCDN  bool
}

func newRootCommand() *cobra.Command {
	opts := &sourceOptions{}

	rootCmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Query the Kinora movie catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.source, "source", movie.SourceBuiltin, "Catalog source: builtin or hosted")
	flags.StringVar(&opts.project, "sanity-project", "dm7gnw8i", "Hosted project identifier")
	flags.StringVar(&opts.dataset, "sanity-dataset", "production", "Hosted dataset")
	flags.StringVar(&opts.version, "sanity-api-version", "2023-05-03", "Hosted API version")
	flags.BoolVar(&opts.useCDN, "sanity-cdn", true, "Query the hosted CDN endpoint")

	rootCmd.AddCommand(newQueryCommand(opts))
	rootCmd.AddCommand(newStatsCommand(opts))
	rootCmd.AddCommand(newGenresCommand(opts))
	rootCmd.AddCommand(newHashPasswordCommand())

	return rootCmd
}

// loadCatalog builds a seeded catalog and reports skipped records on stderr.
func loadCatalog(cmd *cobra.Command, opts *sourceOptions) (*movie.Catalog, error) {
	var hosted movie.HostedSource
	switch opts.source {
	case movie.SourceBuiltin:
	case movie.SourceHosted:
		hosted = sanity.NewClient(sanity.Config{
			ProjectID:  opts.project,
			Dataset:    opts.dataset,
			APIVersion: opts.version,
			UseCDN:     opts.useCDN,
		})
	default:
		return nil, fmt.Errorf("unknown source %q (want builtin or hosted)", opts.source)
	}

	records, err := movie.LoadSeed(cmd.Context(), opts.source, hosted)
	if err != nil {
		return nil, err
	}

	catalog := movie.NewCatalog()
	for _, rejection := range catalog.Seed(records) {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped record %d (%s): %v\n", rejection.Index, rejection.Title, rejection.Fields)
	}
	return catalog, nil
}
