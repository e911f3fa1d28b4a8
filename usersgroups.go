package sftpext

import (
	"context"
	"unicode/utf8"

	"github.com/pkg/errors"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
	"github.com/sftpext/sftpext/encoding/ssh/filexfer/openssh"
)

// ExtensionUsersGroupsByID is the name the server advertises for users-groups-by-id support.
var ExtensionUsersGroupsByID = openssh.ExtensionUsersGroupsByID().Name

// UsersGroupsByID resolves uids to user names and gids to group names.
// The results are aligned with the inputs,
// an empty name means the server could not resolve that id.
// It requires the users-groups-by-id@openssh.com extension.
func (cl *Client) UsersGroupsByID(uids, gids []uint32) (usernames, groupnames []string, err error) {
	return cl.UsersGroupsByIDContext(context.Background(), uids, gids)
}

// UsersGroupsByIDContext is UsersGroupsByID with a context.
func (cl *Client) UsersGroupsByIDContext(ctx context.Context, uids, gids []uint32) (usernames, groupnames []string, err error) {
	cl.Logger().Debug("users-groups-by-id", "uids", uids, "gids", gids)

	req := &openssh.UsersGroupsByIDExtendedPacket{
		UIDs: uids,
		GIDs: gids,
	}

	var resp openssh.UsersGroupsByIDExtendedReplyPacket

	err = cl.call(ctx, ExtensionUsersGroupsByID, req, acceptExtendedReply, func(raw *sshfx.RawPacket) error {
		err := resp.UnmarshalFrom(&raw.Data, len(uids), len(gids))

		var short *openssh.ShortNamesError
		if errors.As(err, &short) {
			return &CardinalityError{
				Op:   ExtensionUsersGroupsByID,
				What: short.Kind + " names",
				Want: short.Want,
				Got:  short.Got,
			}
		}

		if err != nil {
			return err
		}

		if !validNames(resp.Usernames) || !validNames(resp.Groupnames) {
			return &ProtocolError{Op: ExtensionUsersGroupsByID, Err: errInvalidUTF8}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return resp.Usernames, resp.Groupnames, nil
}

func validNames(names []string) bool {
	for _, name := range names {
		if !utf8.ValidString(name) {
			return false
		}
	}

	return true
}
