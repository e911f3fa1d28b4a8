package openssh

import (
	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

const extensionLimits = "limits@openssh.com"

// RegisterExtensionLimits registers the "limits@openssh.com" extended packet with the encoding/ssh/filexfer package.
func RegisterExtensionLimits() {
	sshfx.RegisterExtendedPacketType(extensionLimits, func() sshfx.ExtendedData {
		return new(LimitsExtendedPacket)
	})
}

// ExtensionLimits returns an ExtensionPair suitable to append into an sshfx.InitPacket or sshfx.VersionPacket.
func ExtensionLimits() *sshfx.ExtensionPair {
	return &sshfx.ExtensionPair{
		Name: extensionLimits,
		Data: "1",
	}
}

// LimitsExtendedPacket defines the limits@openssh.com extend packet.
// The request carries no packet-specific data.
type LimitsExtendedPacket struct{}

// Type returns the SSH_FXP_EXTENDED packet type.
func (ep *LimitsExtendedPacket) Type() sshfx.PacketType {
	return sshfx.PacketTypeExtended
}

// ExtendedRequest returns the SSH_FXP_EXTENDED extended-request field associated with this packet type.
func (ep *LimitsExtendedPacket) ExtendedRequest() string {
	return extensionLimits
}

// MarshalPacket returns ep as a two-part binary encoding of the full extended packet.
func (ep *LimitsExtendedPacket) MarshalPacket(reqid uint32, b []byte) (header, payload []byte, err error) {
	p := &sshfx.ExtendedPacket{
		ExtendedRequest: extensionLimits,

		Data: ep,
	}
	return p.MarshalPacket(reqid, b)
}

// MarshalBinary returns an empty encoding.
func (ep *LimitsExtendedPacket) MarshalBinary() ([]byte, error) {
	return nil, nil
}

// UnmarshalBinary ignores any data, there is nothing to decode.
func (ep *LimitsExtendedPacket) UnmarshalBinary(data []byte) error {
	return nil
}

// LimitsExtendedReplyPacket defines the extended reply packet for limits@openssh.com.
//
// A zero value means the server declares no limit for that quantity.
type LimitsExtendedReplyPacket struct {
	MaxPacketLength uint64
	MaxReadLength   uint64
	MaxWriteLength  uint64
	MaxOpenHandles  uint64
}

// Type returns the SSH_FXP_EXTENDED_REPLY packet type.
func (ep *LimitsExtendedReplyPacket) Type() sshfx.PacketType {
	return sshfx.PacketTypeExtendedReply
}

// MarshalPacket returns ep as a two-part binary encoding of the full extended reply packet.
func (ep *LimitsExtendedReplyPacket) MarshalPacket(reqid uint32, b []byte) (header, payload []byte, err error) {
	p := &sshfx.ExtendedReplyPacket{
		Data: ep,
	}
	return p.MarshalPacket(reqid, b)
}

// UnmarshalPacketBody decodes the body of a full extended reply packet into ep.
func (ep *LimitsExtendedReplyPacket) UnmarshalPacketBody(buf *sshfx.Buffer) (err error) {
	p := &sshfx.ExtendedReplyPacket{
		Data: ep,
	}
	return p.UnmarshalPacketBody(buf)
}

// MarshalInto encodes ep into the binary encoding of the limits@openssh.com extended reply packet-specific data.
func (ep *LimitsExtendedReplyPacket) MarshalInto(buf *sshfx.Buffer) {
	buf.AppendUint64(ep.MaxPacketLength)
	buf.AppendUint64(ep.MaxReadLength)
	buf.AppendUint64(ep.MaxWriteLength)
	buf.AppendUint64(ep.MaxOpenHandles)
}

// MarshalBinary encodes ep into the binary encoding of the limits@openssh.com extended reply packet-specific data.
//
// NOTE: This _only_ encodes the packet-specific data, it does not encode the full extended reply packet.
func (ep *LimitsExtendedReplyPacket) MarshalBinary() ([]byte, error) {
	buf := sshfx.NewBuffer(make([]byte, 0, 4*8))
	ep.MarshalInto(buf)
	return buf.Bytes(), nil
}

// UnmarshalFrom decodes the limits@openssh.com extended reply packet-specific data from buf.
// Trailing data is left in buf.
func (ep *LimitsExtendedReplyPacket) UnmarshalFrom(buf *sshfx.Buffer) (err error) {
	if ep.MaxPacketLength, err = buf.ConsumeUint64(); err != nil {
		return err
	}

	if ep.MaxReadLength, err = buf.ConsumeUint64(); err != nil {
		return err
	}

	if ep.MaxWriteLength, err = buf.ConsumeUint64(); err != nil {
		return err
	}

	if ep.MaxOpenHandles, err = buf.ConsumeUint64(); err != nil {
		return err
	}

	return nil
}

// UnmarshalBinary decodes the limits@openssh.com extended reply packet-specific data into ep.
func (ep *LimitsExtendedReplyPacket) UnmarshalBinary(data []byte) (err error) {
	return ep.UnmarshalFrom(sshfx.NewBuffer(data))
}
