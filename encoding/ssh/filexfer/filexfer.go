// Package filexfer implements the wire encoding for secsh-filexfer as described in https://tools.ietf.org/html/draft-ietf-secsh-filexfer-02
//
// Only the parts of the protocol needed to negotiate a session and to carry
// SSH_FXP_EXTENDED requests are implemented here.
package filexfer

// PacketMarshaller narrowly defines packets that will only be transmitted.
type PacketMarshaller interface {
	// MarshalPacket is the primary intended way to encode a packet.
	// The request-id for the packet is set from reqid.
	//
	// An optional buffer may be given in b.
	// If the buffer has a minimum capacity, it shall be truncated and used to marshal the header into.
	// The minimum capacity for the packet must be a constant expression, and should be at least 9.
	//
	// It shall return the main body of the encoded packet in header,
	// and may optionally return an additional payload to be written immediately after the header.
	//
	// It shall encode in the first 4-bytes of the header the proper length of the rest of the header+payload.
	MarshalPacket(reqid uint32, b []byte) (header, payload []byte, err error)
}

// Packet defines the behavior of a full generic SFTP packet.
type Packet interface {
	PacketMarshaller

	// Type returns the SSH_FXP_xy value associated with the specific packet.
	Type() PacketType

	// UnmarshalPacketBody decodes a packet body from the given Buffer.
	// It is assumed that the common header values of the length, type and request-id have already been consumed.
	UnmarshalPacketBody(buf *Buffer) error
}

// ComposePacket converts returns from MarshalPacket into an equivalent call to MarshalBinary.
func ComposePacket(header, payload []byte, err error) ([]byte, error) {
	return append(header, payload...), err
}

// SplitPacket converts returns from MarshalPacket into a packet type and a packet body.
// The body is everything after the uint32(length) and the byte(type),
// that is, the request-id (if any) followed by the packet-specific data.
func SplitPacket(header, payload []byte, err error) (PacketType, []byte, error) {
	if err != nil {
		return 0, nil, err
	}

	if len(header) < 5 {
		return 0, nil, ErrShortPacket
	}

	body := make([]byte, 0, len(header)-5+len(payload))
	body = append(body, header[5:]...)
	body = append(body, payload...)

	return PacketType(header[4]), body, nil
}

// DefaultMaxPacketLength is the packet length every implementation must accept,
// defined in draft-ietf-secsh-filexfer-02 section 3.
const DefaultMaxPacketLength = 34000

// ProtocolVersion is the only version of the protocol this package speaks.
const ProtocolVersion = 3
