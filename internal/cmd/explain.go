package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/animus-labs/evergreen-matrix/internal/domain"
	"github.com/animus-labs/evergreen-matrix/internal/execution/matrix"
)

func newExplainCommand(a *app) *cobra.Command {
	var (
		familyName string
		sets       []string
	)
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show whether one axis assignment is allowed",
		Long: `Evaluate a single assignment against the rules of its family. Axes not
given default to absent when the axis allows it.

Values: use the axis name or "true" to set a boolean axis, and "no<axis>",
"false" or an empty value for absent.

  matrixgen explain --set valgrind=true --set version=latest \
    --set topology=server --set auth=true --set ssl=openssl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			family, err := matrix.ParseFamily(familyName)
			if err != nil {
				return err
			}
			values, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			g, _, err := a.generator()
			if err != nil {
				return err
			}
			ex, err := g.Explain(family, values)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "family:   %s\n", ex.Family)
			fmt.Fprintf(out, "axes:     %s\n", ex.Assignment)
			if ex.Decision.Disallowed() {
				fmt.Fprintf(out, "allowed:  false\nrule:     %s\n", ex.Decision.Rule)
				return nil
			}
			task := ex.Task
			fmt.Fprintf(out, "allowed:  true\nname:     %s\ntags:     %s\n", task.Name, strings.Join(task.Tags.Sorted(), ","))
			if len(task.DependsOn) > 0 {
				fmt.Fprintf(out, "depends:  %s\n", strings.Join(task.DependsOn, ","))
			}
			if secs, ok := task.ExecTimeoutSecs(); ok {
				fmt.Fprintf(out, "timeout:  %ds\n", secs)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&familyName, "family", "f", string(matrix.FamilyIntegration), "task family: integration or auth")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "axis=value, repeatable")
	return cmd
}

// parseAssignments turns axis=value pairs into axis values. "true" maps to
// the axis name, "false", "no<axis>" and "" map to absent.
func parseAssignments(pairs []string) (map[string]domain.Value, error) {
	values := make(map[string]domain.Value, len(pairs))
	for _, pair := range pairs {
		axis, raw, ok := strings.Cut(pair, "=")
		axis = strings.TrimSpace(axis)
		if !ok || axis == "" {
			return nil, fmt.Errorf("invalid --set %q: want axis=value", pair)
		}
		if _, dup := values[axis]; dup {
			return nil, fmt.Errorf("axis %q set more than once", axis)
		}
		raw = strings.TrimSpace(raw)
		switch strings.ToLower(raw) {
		case "", "false", "no" + axis:
			values[axis] = domain.Absent
		case "true":
			values[axis] = domain.Value(axis)
		default:
			values[axis] = domain.Value(raw)
		}
	}
	return values, nil
}
