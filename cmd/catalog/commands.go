// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/kinora/internal/core/movie"
	"github.com/taibuivan/kinora/internal/platform/sec"
)

func newQueryCommand(opts *sourceOptions) *cobra.Command {
	var query movie.Query
	var sortKey string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Search, filter and sort the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(cmd, opts)
			if err != nil {
				return err
			}

			query.Sort = movie.SortKey(sortKey)
			result := movie.Apply(catalog.List(), query)
			if asJSON {
				return writeJSON(cmd, result)
			}

			headers := []string{"ID", "Title", "Year", "Rating", "Genres", "Director"}
			rows := make([][]string, 0, len(result))
			for _, m := range result {
				rows = append(rows, []string{
					m.ID,
					m.Title,
					strconv.Itoa(m.Year),
					strconv.FormatFloat(m.Rating, 'f', 1, 64),
					strings.Join(m.Genre, ", "),
					m.Director,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d movies\n", len(result), catalog.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&query.Search, "search", "", "Case-insensitive text matched against title, description and genres")
	cmd.Flags().StringVar(&query.Genre, "genre", movie.AllGenres, "Genre filter; \"all\" disables it")
	cmd.Flags().StringVar(&sortKey, "sort", string(movie.SortNewest), "Sort key: newest, rating, year or title")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

func newStatsCommand(opts *sourceOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(cmd, opts)
			if err != nil {
				return err
			}

			stats := movie.ComputeStats(catalog.List(), time.Now())
			if asJSON {
				return writeJSON(cmd, stats)
			}

			rows := [][]string{
				{"Total movies", strconv.Itoa(stats.TotalMovies)},
				{"Average rating", strconv.FormatFloat(stats.AverageRating, 'f', 1, 64)},
				{"Genres", strconv.Itoa(stats.GenreCount)},
				{"Added this month", strconv.Itoa(stats.AddedThisMonth)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newGenresCommand(opts *sourceOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the distinct genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(cmd, opts)
			if err != nil {
				return err
			}
			for _, genre := range movie.Genres(catalog.List()) {
				fmt.Fprintln(cmd.OutOrStdout(), genre)
			}
			return nil
		},
	}
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := sec.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
