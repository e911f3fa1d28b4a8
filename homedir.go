package sftpext

import (
	"context"

	"github.com/sftpext/sftpext/encoding/ssh/filexfer/openssh"
)

// ExtensionHomeDirectory is the name the server advertises for home-directory support.
var ExtensionHomeDirectory = openssh.ExtensionHomeDirectory().Name

// HomeDirectory returns the home directory of username,
// or of the authenticated user when username is empty.
// The bool is false when the server returned no directory.
// It requires the home-directory extension.
func (cl *Client) HomeDirectory(username string) (string, bool, error) {
	return cl.HomeDirectoryContext(context.Background(), username)
}

// HomeDirectoryContext is HomeDirectory with a context.
func (cl *Client) HomeDirectoryContext(ctx context.Context, username string) (string, bool, error) {
	cl.Logger().Debug("home-directory", "username", username)

	return cl.callPath(ctx, ExtensionHomeDirectory, &openssh.HomeDirectoryExtendedPacket{Username: username})
}
