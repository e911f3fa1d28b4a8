package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sftpext/sftpext"
)

func (a *app) homedirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "homedir [USER]",
		Short: "Show the home directory of USER",
		Long: `Show the home directory of USER on the server,
or of the logged in user when USER is omitted.
Requires the home-directory extension.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var username string
			if len(args) > 0 {
				username = args[0]
			}

			return a.run(cmd.Context(), "homedir", func(ctx context.Context, cl *sftpext.Client) (any, error) {
				dir, ok, err := cl.HomeDirectoryContext(ctx, username)
				if err != nil {
					return nil, err
				}

				if !ok {
					a.logger.Warn("server returned no home directory", "user", username)
				}

				return pathResult{Path: dir, Found: ok}, nil
			})
		},
	}
}
