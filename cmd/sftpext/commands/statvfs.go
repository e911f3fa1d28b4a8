package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sftpext/sftpext"
)

func (a *app) statvfsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "statvfs PATH",
		Short: "Show filesystem statistics for PATH",
		Long: `Show the statvfs(3) fields of the filesystem holding PATH on the server.
Requires the statvfs@openssh.com extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			return a.run(cmd.Context(), "statvfs", func(ctx context.Context, cl *sftpext.Client) (any, error) {
				a.logger.Info("retrieving statvfs", "path", path)

				st, err := cl.StatVFSContext(ctx, path)
				if err != nil {
					return nil, err
				}

				return fieldList{keys: sftpext.StatVFSKeys, values: st.Map()}, nil
			})
		},
	}
}
