package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/raysh454/imola/internal/roles"
)

func newDictionaryCommand(opts *rootOptions) *cobra.Command {
	var (
		dump bool
		role string
	)
	cmd := &cobra.Command{
		Use:   "dictionary",
		Short: "Validate and print the role dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if dump {
				_, err := out.Write(roles.DefaultYAML())
				return err
			}
			a, err := opts.newApplication(cmd)
			if err != nil {
				return err
			}
			d := a.Dictionary

			if role != "" {
				if _, ok := d.Role(role); !ok {
					return fmt.Errorf("unknown role %q (have %s)", role, strings.Join(d.Names(), ", "))
				}
				for _, kw := range d.Keywords(role) {
					fmt.Fprintln(out, kw)
				}
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ROLE\tWEIGHT\tKEYWORDS")
			for _, r := range d.Roles() {
				fmt.Fprintf(tw, "%s\t%.2f\t%s\n", r.Name, r.Weight, strings.Join(r.Keywords, ", "))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintln(tw, "SYNERGY\tBONUS")
			for _, s := range d.SynergyPairs() {
				fmt.Fprintf(tw, "%s + %s\t%.2f\n", s.Pair.A, s.Pair.B, s.Bonus)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\ngroup bonus: %.2f\nmax score: %.2f\n", d.GroupBonus(), d.MaxScore())
			for _, w := range d.Warnings() {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "default", false, "print the built-in dictionary YAML and exit")
	cmd.Flags().StringVar(&role, "role", "", "print only the keywords of one role, one per line")
	return cmd
}
