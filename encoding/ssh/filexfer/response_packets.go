package filexfer

import (
	"fmt"
)

// StatusPacket defines the SSH_FXP_STATUS packet.
//
// Specified in https://tools.ietf.org/html/draft-ietf-secsh-filexfer-02#section-7
type StatusPacket struct {
	StatusCode   Status
	ErrorMessage string
	LanguageTag  string
}

// Error makes StatusPacket an error type.
func (p *StatusPacket) Error() string {
	if p.ErrorMessage == "" {
		return "sftp: " + p.StatusCode.String()
	}

	return fmt.Sprintf("sftp: %s: %q", p.StatusCode, p.ErrorMessage)
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *StatusPacket) Type() PacketType {
	return PacketTypeStatus
}

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *StatusPacket) MarshalPacket(reqid uint32, b []byte) (header, payload []byte, err error) {
	buf := NewBuffer(b)
	if buf.Cap() < 9 {
		// uint32(error/status code) + string(error message) + string(language tag)
		size := 4 + 4 + len(p.ErrorMessage) + 4 + len(p.LanguageTag)
		buf = NewMarshalBuffer(size)
	}

	buf.StartPacket(PacketTypeStatus, reqid)

	buf.AppendUint32(uint32(p.StatusCode))
	buf.AppendString(p.ErrorMessage)
	buf.AppendString(p.LanguageTag)

	return buf.Packet(nil)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed that the uint32(request-id) has already been consumed.
//
// Some servers send neither error message nor language tag,
// so only the status code is required.
func (p *StatusPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	code, err := buf.ConsumeUint32()
	if err != nil {
		return err
	}

	*p = StatusPacket{
		StatusCode: Status(code),
	}

	if buf.Len() == 0 {
		return nil
	}

	if p.ErrorMessage, err = buf.ConsumeString(); err != nil {
		return err
	}

	if buf.Len() == 0 {
		return nil
	}

	if p.LanguageTag, err = buf.ConsumeString(); err != nil {
		return err
	}

	return nil
}

// PathPseudoPacket defines a SSH_FXP_NAME shaped reply that is expected to carry at most one name.
//
// Only the uint32(count) and, when count is exactly one, the first string(filename) are decoded.
// The longname and ATTRS that conforming servers send after the filename are left unread,
// as is anything else at the end of the packet.
type PathPseudoPacket struct {
	Count uint32
	Path  string
}

// Present reports whether the reply carried exactly one name.
func (p *PathPseudoPacket) Present() bool {
	return p.Count == 1
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *PathPseudoPacket) Type() PacketType {
	return PacketTypeName
}

// MarshalInto encodes p as a one or zero entry name list.
// The longname is sent empty, and the ATTRS carry no flags.
func (p *PathPseudoPacket) MarshalInto(buf *Buffer) {
	if p.Count == 0 {
		buf.AppendUint32(0)
		return
	}

	buf.AppendUint32(1)
	buf.AppendString(p.Path)
	buf.AppendString("") // longname
	buf.AppendUint32(0)  // ATTRS(flags)
}

// MarshalBinary encodes p into the body that follows the request-id.
func (p *PathPseudoPacket) MarshalBinary() ([]byte, error) {
	buf := NewBuffer(make([]byte, 0, 4+4+len(p.Path)+4+4))
	p.MarshalInto(buf)
	return buf.Bytes(), nil
}

// MarshalPacket returns p as a two-part binary encoding of a SSH_FXP_NAME packet.
func (p *PathPseudoPacket) MarshalPacket(reqid uint32, b []byte) (header, payload []byte, err error) {
	buf := NewBuffer(b)
	if buf.Cap() < 9 {
		buf = NewMarshalBuffer(4 + 4 + len(p.Path) + 4 + 4)
	}

	buf.StartPacket(PacketTypeName, reqid)
	p.MarshalInto(buf)

	return buf.Packet(nil)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed that the uint32(request-id) has already been consumed.
//
// A count other than zero or one is not an error here,
// the caller decides what such a reply means.
func (p *PathPseudoPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	*p = PathPseudoPacket{}

	if p.Count, err = buf.ConsumeUint32(); err != nil {
		return err
	}

	if p.Count != 1 {
		return nil
	}

	if p.Path, err = buf.ConsumeString(); err != nil {
		return err
	}

	return nil
}

// UnmarshalBinary decodes the body that follows the request-id into p.
func (p *PathPseudoPacket) UnmarshalBinary(data []byte) error {
	return p.UnmarshalPacketBody(NewBuffer(data))
}
