package commands

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sftpext/sftpext"
)

func toUint32s(in []uint) ([]uint32, error) {
	out := make([]uint32, 0, len(in))
	for _, v := range in {
		if v > math.MaxUint32 {
			return nil, errors.Errorf("id %d out of range", v)
		}
		out = append(out, uint32(v))
	}
	return out, nil
}

func (a *app) idsCommand() *cobra.Command {
	var uidFlags, gidFlags []uint

	cmd := &cobra.Command{
		Use:   "ids",
		Short: "Resolve numeric user and group ids to names",
		Long: `Resolve numeric user and group ids to names on the server.
An empty name means the server could not resolve that id.
Requires the users-groups-by-id@openssh.com extension.

Examples:
  sftpext ids --uid 0 --uid 1000 --gid 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uids, err := toUint32s(uidFlags)
			if err != nil {
				return errors.Wrap(err, "ids failed")
			}

			gids, err := toUint32s(gidFlags)
			if err != nil {
				return errors.Wrap(err, "ids failed")
			}

			return a.run(cmd.Context(), "ids", func(ctx context.Context, cl *sftpext.Client) (any, error) {
				users, groups, err := cl.UsersGroupsByIDContext(ctx, uids, gids)
				if err != nil {
					return nil, err
				}

				return idResult{
					Users:  newIDNames(uids, users),
					Groups: newIDNames(gids, groups),
				}, nil
			})
		},
	}

	cmd.Flags().UintSliceVar(&uidFlags, "uid", nil, "user id to resolve (repeatable)")
	cmd.Flags().UintSliceVar(&gidFlags, "gid", nil, "group id to resolve (repeatable)")

	return cmd
}
