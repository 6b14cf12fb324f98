package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/animus-labs/evergreen-matrix/internal/execution/matrix"
)

func newListCommand(a *app) *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:       "list <compile|integration|auth>",
		Short:     "List the tasks of one family",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(matrix.FamilyCompile), string(matrix.FamilyIntegration), string(matrix.FamilyAuth)},
		RunE: func(cmd *cobra.Command, args []string) error {
			family, err := matrix.ParseFamily(args[0])
			if err != nil {
				return err
			}
			g, _, err := a.generator()
			if err != nil {
				return err
			}
			tasks, err := g.Generate(family)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !long {
				for _, task := range tasks {
					fmt.Fprintln(out, task.Name)
				}
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTAGS\tDEPENDS ON")
			for _, task := range tasks {
				deps := strings.Join(task.DependsOn, ",")
				if deps == "" {
					deps = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", task.Name, strings.Join(task.Tags.Sorted(), ","), deps)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show tags and dependencies")
	return cmd
}
