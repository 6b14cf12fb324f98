package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/animus-labs/evergreen-matrix/internal/evergreen"
)

// ErrStale is returned by check when output.path differs from a fresh render.
var ErrStale = errors.New("generated configuration is out of date; run matrixgen generate")

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the matrix is consistent and output.path is up to date",
		Long: `Render the matrix twice and require byte-identical output, then compare
the result with the document at output.path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			first, err := a.render()
			if err != nil {
				return err
			}
			second, err := a.render()
			if err != nil {
				return err
			}
			if first.digest != second.digest {
				return fmt.Errorf("rendering is not deterministic: %s != %s", first.digest, second.digest)
			}

			path := a.cfg.Output.Path
			current, err := os.ReadFile(path)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("%s: %w", path, ErrStale)
				}
				return fmt.Errorf("read %s: %w", path, err)
			}
			if evergreen.Digest(current) != first.digest {
				return fmt.Errorf("%s: %w", path, ErrStale)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date (%d tasks, sha256 %s)\n", path, len(first.matrix.Tasks()), first.digest)
			return nil
		},
	}
}
