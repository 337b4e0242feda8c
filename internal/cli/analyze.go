package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raysh454/imola/internal/analyzer"
	"github.com/raysh454/imola/internal/corpus"
)

// analysis is one line of `imola analyze --json` output.
type analysis struct {
	Name string `json:"name"`
	analyzer.Result
}

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Score files, or stdin when no file is given",
		Example: `  imola analyze artykul.txt relacja.html
  echo "Senna miał wypadek" | imola analyze --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApplication(cmd)
			if err != nil {
				return err
			}
			reader := corpus.NewReader()
			out := cmd.OutOrStdout()

			inputs := args
			if len(inputs) == 0 {
				inputs = []string{"-"}
			}
			enc := json.NewEncoder(out)
			for _, name := range inputs {
				text, err := readInput(cmd.InOrStdin(), reader, name)
				if err != nil {
					return err
				}
				res := a.Analyze(text)
				if asJSON {
					if err := enc.Encode(analysis{Name: name, Result: res}); err != nil {
						return err
					}
					continue
				}
				printAnalysis(out, name, res, len(inputs) > 1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON result per input")
	return cmd
}

func readInput(stdin io.Reader, reader *corpus.Reader, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return reader.Decode(name, data)
}

func printAnalysis(w io.Writer, name string, res analyzer.Result, header bool) {
	if header {
		fmt.Fprintf(w, "== %s\n", name)
	}
	fmt.Fprintf(w, "score: %.2f\n", res.Score)
	for _, role := range res.Roles {
		fmt.Fprintf(w, "%s: %s\n", role, strings.Join(res.FoundRoles[role], ", "))
	}
	if res.Highlighted != "" {
		fmt.Fprintf(w, "\n%s\n", res.Highlighted)
	}
}
