package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sftpext/sftpext"
)

func (a *app) limitsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "Show the server's transfer limits",
		Long: `Show the packet, read, write, and open handle limits of the server.
A zero value means no limit. Requires the limits@openssh.com extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), "limits", func(ctx context.Context, cl *sftpext.Client) (any, error) {
				l, err := cl.LimitsContext(ctx)
				if err != nil {
					return nil, err
				}

				return fieldList{keys: sftpext.LimitsKeys, values: l.Map()}, nil
			})
		},
	}
}
