package openssh

import (
	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

const extensionExpandPath = "expand-path@openssh.com"

// RegisterExtensionExpandPath registers the "expand-path@openssh.com" extended packet with the encoding/ssh/filexfer package.
func RegisterExtensionExpandPath() {
	sshfx.RegisterExtendedPacketType(extensionExpandPath, func() sshfx.ExtendedData {
		return new(ExpandPathExtendedPacket)
	})
}

// ExtensionExpandPath returns an ExtensionPair suitable to append into an sshfx.InitPacket or sshfx.VersionPacket.
func ExtensionExpandPath() *sshfx.ExtensionPair {
	return &sshfx.ExtensionPair{
		Name: extensionExpandPath,
		Data: "1",
	}
}

// ExpandPathExtendedPacket defines the expand-path@openssh.com extend packet.
//
// It behaves as SSH_FXP_REALPATH, except that a leading "~" or "~user" is expanded by the server.
// The reply is a SSH_FXP_NAME, decoded the same way as for home-directory.
type ExpandPathExtendedPacket struct {
	Path string
}

// Type returns the SSH_FXP_EXTENDED packet type.
func (ep *ExpandPathExtendedPacket) Type() sshfx.PacketType {
	return sshfx.PacketTypeExtended
}

// ExtendedRequest returns the SSH_FXP_EXTENDED extended-request field associated with this packet type.
func (ep *ExpandPathExtendedPacket) ExtendedRequest() string {
	return extensionExpandPath
}

// MarshalPacket returns ep as a two-part binary encoding of the full extended packet.
func (ep *ExpandPathExtendedPacket) MarshalPacket(reqid uint32, b []byte) (header, payload []byte, err error) {
	p := &sshfx.ExtendedPacket{
		ExtendedRequest: extensionExpandPath,

		Data: ep,
	}
	return p.MarshalPacket(reqid, b)
}

// MarshalInto encodes ep into the binary encoding of the expand-path@openssh.com extended packet-specific data.
func (ep *ExpandPathExtendedPacket) MarshalInto(buf *sshfx.Buffer) {
	buf.AppendString(ep.Path)
}

// MarshalBinary encodes ep into the binary encoding of the expand-path@openssh.com extended packet-specific data.
//
// NOTE: This _only_ encodes the packet-specific data, it does not encode the full extended packet.
func (ep *ExpandPathExtendedPacket) MarshalBinary() ([]byte, error) {
	size := 4 + len(ep.Path) // string(path)

	buf := sshfx.NewBuffer(make([]byte, 0, size))
	ep.MarshalInto(buf)
	return buf.Bytes(), nil
}

// UnmarshalFrom decodes the expand-path@openssh.com extended packet-specific data from buf.
func (ep *ExpandPathExtendedPacket) UnmarshalFrom(buf *sshfx.Buffer) (err error) {
	if ep.Path, err = buf.ConsumeString(); err != nil {
		return err
	}

	return nil
}

// UnmarshalBinary decodes the expand-path@openssh.com extended packet-specific data into ep.
func (ep *ExpandPathExtendedPacket) UnmarshalBinary(data []byte) (err error) {
	return ep.UnmarshalFrom(sshfx.NewBuffer(data))
}
