package openssh

import (
	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

const extensionHomeDirectory = "home-directory"

// RegisterExtensionHomeDirectory registers the "home-directory" extended packet with the encoding/ssh/filexfer package.
func RegisterExtensionHomeDirectory() {
	sshfx.RegisterExtendedPacketType(extensionHomeDirectory, func() sshfx.ExtendedData {
		return new(HomeDirectoryExtendedPacket)
	})
}

// ExtensionHomeDirectory returns an ExtensionPair suitable to append into an sshfx.InitPacket or sshfx.VersionPacket.
func ExtensionHomeDirectory() *sshfx.ExtensionPair {
	return &sshfx.ExtensionPair{
		Name: extensionHomeDirectory,
		Data: "1",
	}
}

// HomeDirectoryExtendedPacket defines the home-directory extend packet.
//
// The server answers with a SSH_FXP_NAME carrying a single name,
// which decodes into an sshfx.PathPseudoPacket.
type HomeDirectoryExtendedPacket struct {
	Username string
}

// Type returns the SSH_FXP_EXTENDED packet type.
func (ep *HomeDirectoryExtendedPacket) Type() sshfx.PacketType {
	return sshfx.PacketTypeExtended
}

// ExtendedRequest returns the SSH_FXP_EXTENDED extended-request field associated with this packet type.
func (ep *HomeDirectoryExtendedPacket) ExtendedRequest() string {
	return extensionHomeDirectory
}

// MarshalPacket returns ep as a two-part binary encoding of the full extended packet.
func (ep *HomeDirectoryExtendedPacket) MarshalPacket(reqid uint32, b []byte) (header, payload []byte, err error) {
	p := &sshfx.ExtendedPacket{
		ExtendedRequest: extensionHomeDirectory,

		Data: ep,
	}
	return p.MarshalPacket(reqid, b)
}

// MarshalInto encodes ep into the binary encoding of the home-directory extended packet-specific data.
func (ep *HomeDirectoryExtendedPacket) MarshalInto(buf *sshfx.Buffer) {
	buf.AppendString(ep.Username)
}

// MarshalBinary encodes ep into the binary encoding of the home-directory extended packet-specific data.
//
// NOTE: This _only_ encodes the packet-specific data, it does not encode the full extended packet.
func (ep *HomeDirectoryExtendedPacket) MarshalBinary() ([]byte, error) {
	size := 4 + len(ep.Username) // string(username)

	buf := sshfx.NewBuffer(make([]byte, 0, size))
	ep.MarshalInto(buf)
	return buf.Bytes(), nil
}

// UnmarshalFrom decodes the home-directory extended packet-specific data from buf.
func (ep *HomeDirectoryExtendedPacket) UnmarshalFrom(buf *sshfx.Buffer) (err error) {
	if ep.Username, err = buf.ConsumeString(); err != nil {
		return err
	}

	return nil
}

// UnmarshalBinary decodes the home-directory extended packet-specific data into ep.
func (ep *HomeDirectoryExtendedPacket) UnmarshalBinary(data []byte) (err error) {
	return ep.UnmarshalFrom(sshfx.NewBuffer(data))
}
