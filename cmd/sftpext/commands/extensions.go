package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sftpext/sftpext"
)

func (a *app) extensionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extensions",
		Short: "List the extensions the server advertises",
		Long: `List the extension name and version pairs from the server's
SSH_FXP_VERSION packet, in the order the server sent them.

Examples:
  sftpext extensions --host sftp.example.com --user alice --use-agent
  sftpext extensions -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), "extensions", func(_ context.Context, cl *sftpext.Client) (any, error) {
				exts := cl.Extensions()
				a.logger.Info("server extensions", "count", len(exts), "version", cl.ServerVersion())
				return newExtensionList(exts), nil
			})
		},
	}
}
