// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tochemey/actorcheck/benchmarks"
	"github.com/tochemey/actorcheck/trace"
)

// ListOptions holds the flags of the list command
type ListOptions struct {
	*RootOptions
	Store string
}

// NewListCommand creates the list command
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the benchmarks, or the recorded bugs with --store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Store != "" {
				return listRecords(cmd, opts)
			}
			return listBenchmarks(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "", "path of the bbolt trace store")
	return cmd
}

type benchmarkEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Buggy       bool   `json:"buggy"`
}

func listBenchmarks(cmd *cobra.Command, opts *ListOptions) error {
	all := benchmarks.All()
	entries := make([]benchmarkEntry, 0, len(all))
	for _, b := range all {
		entries = append(entries, benchmarkEntry{Name: b.Name, Description: b.Description, Buggy: b.Buggy})
	}
	if opts.Format == jsonFormat {
		return writeJSON(cmd.OutOrStdout(), entries)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBUGGY\tDESCRIPTION")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%t\t%s\n", entry.Name, entry.Buggy, entry.Description)
	}
	return w.Flush()
}

func listRecords(cmd *cobra.Command, opts *ListOptions) (err error) {
	store, err := trace.OpenStore(cmd.Context(), opts.Store)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	records, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if opts.Format == jsonFormat {
		return writeJSON(cmd.OutOrStdout(), records)
	}
	if len(records) == 0 {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "No bugs recorded.")
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTEST\tKIND\tSTRATEGY\tSEED\tITERATION\tSTEPS\tMESSAGE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n", r.ID, r.Test, r.Kind, r.Strategy, r.Seed, r.Iteration, r.Steps, r.Message)
	}
	return w.Flush()
}
