package sftpext

import (
	"context"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
	"github.com/sftpext/sftpext/encoding/ssh/filexfer/openssh"
)

// ExtensionLimits is the name the server advertises for limits support.
var ExtensionLimits = openssh.ExtensionLimits().Name

// Limits are the transfer limits a server declares. Zero means no limit.
type Limits struct {
	MaxPacketLength uint64
	MaxReadLength   uint64
	MaxWriteLength  uint64
	MaxOpenHandles  uint64
}

// Map returns the four fields keyed by their protocol names.
func (l *Limits) Map() map[string]uint64 {
	return map[string]uint64{
		"max-packet-length": l.MaxPacketLength,
		"max-read-length":   l.MaxReadLength,
		"max-write-length":  l.MaxWriteLength,
		"max-open-handles":  l.MaxOpenHandles,
	}
}

// LimitsKeys lists the keys of Limits.Map in wire order.
var LimitsKeys = []string{"max-packet-length", "max-read-length", "max-write-length", "max-open-handles"}

// Limits asks the server for its transfer limits.
// It requires the limits@openssh.com extension.
func (cl *Client) Limits() (*Limits, error) {
	return cl.LimitsContext(context.Background())
}

// LimitsContext is Limits with a context.
func (cl *Client) LimitsContext(ctx context.Context) (*Limits, error) {
	cl.Logger().Debug("limits")

	var resp openssh.LimitsExtendedReplyPacket

	err := cl.call(ctx, ExtensionLimits, &openssh.LimitsExtendedPacket{}, acceptExtendedReply, func(raw *sshfx.RawPacket) error {
		return resp.UnmarshalFrom(&raw.Data)
	})
	if err != nil {
		return nil, err
	}

	return &Limits{
		MaxPacketLength: resp.MaxPacketLength,
		MaxReadLength:   resp.MaxReadLength,
		MaxWriteLength:  resp.MaxWriteLength,
		MaxOpenHandles:  resp.MaxOpenHandles,
	}, nil
}
