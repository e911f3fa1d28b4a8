package commands

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sftpext/sftpext"
)

func (a *app) expandCommand() *cobra.Command {
	var (
		adjust string
		cwd    string
	)

	cmd := &cobra.Command{
		Use:   "expand PATH",
		Short: "Canonicalize PATH on the server, expanding a leading ~",
		Long: `Canonicalize PATH on the server, expanding "~" and "~user" prefixes.
Relative paths are first joined with --cwd according to --adjust:
  auto   join unless PATH starts with "~"
  force  always join
  skip   never join
Requires the expand-path@openssh.com extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			policy, ok := sftpext.ParseAdjustPolicy(adjust)
			if !ok {
				return errors.Errorf("expand failed: invalid --adjust %q (valid: auto, force, skip)", adjust)
			}

			return a.run(cmd.Context(), "expand", func(ctx context.Context, cl *sftpext.Client) (any, error) {
				if cwd != "" {
					cl.Chdir(cwd)
				}

				expanded, ok, err := cl.ExpandPathContext(ctx, path, policy)
				if err != nil {
					return nil, err
				}

				return pathResult{Path: expanded, Found: ok}, nil
			})
		},
	}

	cmd.Flags().StringVar(&adjust, "adjust", "auto", "working directory adjustment (auto|force|skip)")
	cmd.Flags().StringVar(&cwd, "cwd", "", "working directory relative paths are joined with")

	return cmd
}
