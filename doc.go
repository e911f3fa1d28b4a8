// Package sftpext implements the client side of the OpenSSH SFTP protocol extensions.
//
// A Client performs the SSH_FXP_INIT / SSH_FXP_VERSION handshake on a Channel,
// keeps the extensions the server advertised,
// and issues the statvfs@openssh.com, home-directory, users-groups-by-id@openssh.com,
// expand-path@openssh.com and limits@openssh.com extended requests.
//
// Every operation fails with an *ExtensionUnsupportedError, without sending anything,
// when the server did not advertise the extension it needs.
package sftpext
