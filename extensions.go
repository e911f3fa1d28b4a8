package sftpext

import (
	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

// HasExtension reports whether the server advertised the named extension, at any version.
func (cl *Client) HasExtension(name string) bool {
	cl.state.RLock()
	defer cl.state.RUnlock()

	for _, ext := range cl.exts {
		if ext.Name == name {
			return true
		}
	}

	return false
}

// ExtensionSupported reports whether the server advertised exactly the given name and version.
func (cl *Client) ExtensionSupported(name, version string) bool {
	cl.state.RLock()
	defer cl.state.RUnlock()

	for _, ext := range cl.exts {
		if ext.Name == name && ext.Data == version {
			return true
		}
	}

	return false
}

// ExtensionVersions returns every version advertised for the named extension, in the order received.
func (cl *Client) ExtensionVersions(name string) []string {
	cl.state.RLock()
	defer cl.state.RUnlock()

	var versions []string
	for _, ext := range cl.exts {
		if ext.Name == name {
			versions = append(versions, ext.Data)
		}
	}

	return versions
}

// Extensions returns a copy of the extensions the server advertised, duplicates included.
func (cl *Client) Extensions() []sshfx.ExtensionPair {
	cl.state.RLock()
	defer cl.state.RUnlock()

	return append([]sshfx.ExtensionPair(nil), cl.exts...)
}

// ServerVersion returns the protocol version the server sent, or zero before negotiation.
func (cl *Client) ServerVersion() uint32 {
	cl.state.RLock()
	defer cl.state.RUnlock()

	return cl.version
}

// Negotiated reports whether the handshake has completed.
func (cl *Client) Negotiated() bool {
	cl.state.RLock()
	defer cl.state.RUnlock()

	return cl.negotiated
}
