package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/raysh454/imola/internal/corpus"
	"github.com/raysh454/imola/internal/frequency"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	var (
		sortBy string
		source string
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List corpus documents with their scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := corpus.ParseSortKey(sortBy)
			if err != nil {
				return err
			}
			a, err := opts.newApplication(cmd)
			if err != nil {
				return err
			}
			entries, err := a.Corpus.List(cmd.Context())
			if err != nil {
				return err
			}
			entries = corpus.FilterSource(entries, source)
			corpus.SortEntries(entries, key)
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCORE\tSOURCE\tNAME\tROLES")
			for _, e := range entries {
				fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\n", e.Score, e.Source, e.Name, strings.Join(e.Roles, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "score", "sort order: score, name or source")
	cmd.Flags().StringVar(&source, "only", "", "list a single source label")
	cmd.Flags().IntVar(&limit, "limit", 0, "print at most n documents (0 prints all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newWordsCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Report the most frequent words in thematic and other documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApplication(cmd)
			if err != nil {
				return err
			}
			rep, err := a.WordReport(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rep)
			}
			out := cmd.OutOrStdout()
			printWords(out, fmt.Sprintf("thematic (score >= %.2f, %d documents)", rep.Threshold, rep.ThematicDocs), rep.Thematic)
			fmt.Fprintln(out)
			printWords(out, fmt.Sprintf("other (%d documents)", rep.OtherDocs), rep.Other)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printWords(w io.Writer, title string, words []frequency.WordCount) {
	fmt.Fprintln(w, title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	for i, wc := range words {
		fmt.Fprintf(tw, "%d.\t%d\t %s\n", i+1, wc.Count, wc.Word)
	}
	_ = tw.Flush()
}
