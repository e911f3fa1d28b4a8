package filexfer

import (
	"io"
)

// RawPacket implements the general packet format from draft-ietf-secsh-filexfer-02
//
// Defined in https://tools.ietf.org/html/draft-ietf-secsh-filexfer-02#section-3
type RawPacket struct {
	Type      PacketType
	RequestID uint32

	Data Buffer
}

// MarshalPacket returns p as a two-part binary encoding of p.
//
// The internal p.RequestID is overridden by the reqid argument.
func (p *RawPacket) MarshalPacket(reqid uint32, b []byte) (header, payload []byte, err error) {
	buf := NewBuffer(b)
	if buf.Cap() < 9 {
		buf = NewMarshalBuffer(0)
	}

	buf.StartPacket(p.Type, reqid)

	return buf.Packet(p.Data.Bytes())
}

// MarshalBinary returns p as the binary encoding of p.
func (p *RawPacket) MarshalBinary() ([]byte, error) {
	return ComposePacket(p.MarshalPacket(p.RequestID, nil))
}

// UnmarshalPacketBody decodes the request-id from the given Buffer,
// and keeps the rest of the Buffer as the packet-specific Data.
// It is assumed that the uint32(length) and uint8(type) have already been consumed.
//
// The Data field will take ownership of the underyling byte slice of buf.
// The caller should not use buf after this call.
func (p *RawPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.RequestID, err = buf.ConsumeUint32(); err != nil {
		return err
	}

	p.Data = *buf
	return nil
}

// UnmarshalFrom decodes a RawPacket from the given Buffer into p.
//
// The Data field will take ownership of the underyling byte slice of buf.
// The caller should not use buf after this call.
func (p *RawPacket) UnmarshalFrom(buf *Buffer) error {
	typ, err := buf.ConsumeUint8()
	if err != nil {
		return err
	}

	p.Type = PacketType(typ)

	return p.UnmarshalPacketBody(buf)
}

// UnmarshalBinary decodes a full raw packet out of the given data.
// It is assumed that the uint32(length) has already been consumed to receive the data.
//
// NOTE: To avoid extra allocations, UnmarshalBinary aliases the given byte slice.
func (p *RawPacket) UnmarshalBinary(data []byte) error {
	return p.UnmarshalFrom(NewBuffer(data))
}

// ReadPacket reads a uint32 length-prefixed binary data packet from r,
// returning the uint8(type) and the remaining packet body.
// If the given buffer is less than 4-bytes, it allocates a new buffer of size maxPacketLength.
// Packets longer than maxPacketLength are rejected with ErrLongPacket.
func ReadPacket(r io.Reader, b []byte, maxPacketLength uint32) (PacketType, []byte, error) {
	if len(b) < 4 {
		b = make([]byte, max(maxPacketLength, 4))
	}

	if _, err := io.ReadFull(r, b[:4]); err != nil {
		return 0, nil, err
	}

	length := unmarshalUint32(b)
	if length < 1 {
		return 0, nil, ErrShortPacket
	}

	if length > maxPacketLength {
		return 0, nil, ErrLongPacket
	}

	if int64(length) > int64(len(b)) {
		b = make([]byte, length)
	}

	if _, err := io.ReadFull(r, b[:length]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, nil, err
	}

	return PacketType(b[0]), b[1:length], nil
}

// WritePacket writes a single framed packet of the given type and body to w.
// The header and body are written with two calls to Write.
func WritePacket(w io.Writer, typ PacketType, body []byte) error {
	header := NewBuffer(make([]byte, 0, 5))
	header.AppendUint32(uint32(1 + len(body)))
	header.AppendUint8(uint8(typ))

	if _, err := w.Write(header.Bytes()); err != nil {
		return err
	}

	if len(body) != 0 {
		if _, err := w.Write(body); err != nil {
			return err
		}
	}

	return nil
}

// unmarshalUint32 is used internally to read the packet length.
// It is unsafe, and so not exported.
// Even in this package, its use should be avoided.
func unmarshalUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
