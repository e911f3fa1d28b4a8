// Package openssh implements the openssh secsh-filexfer extensions as described in https://github.com/openssh/openssh-portable/blob/master/PROTOCOL
//
// Each extension has a request packet, implementing sshfx.PacketMarshaller,
// and a reply type that decodes the SSH_FXP_EXTENDED_REPLY (or SSH_FXP_NAME) body.
package openssh

import (
	"sync"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

var registerOnce sync.Once

// RegisterExtensions registers the request packets of every extension in this package
// with the encoding/ssh/filexfer package,
// so that sshfx.ExtendedPacket decodes them into their typed form.
// It is safe to call more than once.
func RegisterExtensions() {
	registerOnce.Do(func() {
		RegisterExtensionStatVFS()
		RegisterExtensionHomeDirectory()
		RegisterExtensionUsersGroupsByID()
		RegisterExtensionExpandPath()
		RegisterExtensionLimits()
	})
}

// Extensions returns the extension pairs an OpenSSH server advertises for the extensions in this package.
func Extensions() []*sshfx.ExtensionPair {
	return []*sshfx.ExtensionPair{
		ExtensionStatVFS(),
		ExtensionHomeDirectory(),
		ExtensionUsersGroupsByID(),
		ExtensionExpandPath(),
		ExtensionLimits(),
	}
}
