package sftpext

import (
	"io"
	"sync"

	"github.com/pkg/errors"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

// Channel is an ordered, full-duplex packet channel to an SFTP server.
//
// A packet body is everything after the uint32(length) and byte(type),
// so for all packets but SSH_FXP_INIT and SSH_FXP_VERSION it starts with the uint32(request-id).
type Channel interface {
	SendPacket(typ sshfx.PacketType, body []byte) error

	// RecvPacket returns the next packet.
	// The body is only valid until the next call to RecvPacket.
	RecvPacket() (sshfx.PacketType, []byte, error)

	Close() error
}

// streamChannel implements Channel over a byte stream.
type streamChannel struct {
	rd io.Reader

	mu sync.Mutex // serialises writes
	wr io.WriteCloser

	maxPacket uint32
	buf       []byte

	closers []io.Closer
}

// NewStreamChannel returns a Channel that frames packets over the given byte stream.
// Incoming packets longer than the default maximum packet length are rejected.
func NewStreamChannel(rd io.Reader, wr io.WriteCloser) Channel {
	return newStreamChannel(rd, wr, sshfx.DefaultMaxPacketLength)
}

func newStreamChannel(rd io.Reader, wr io.WriteCloser, maxPacket uint32, closers ...io.Closer) *streamChannel {
	return &streamChannel{
		rd:        rd,
		wr:        wr,
		maxPacket: maxPacket,
		closers:   closers,
	}
}

func (c *streamChannel) SendPacket(typ sshfx.PacketType, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return sshfx.WritePacket(c.wr, typ, body)
}

func (c *streamChannel) RecvPacket() (sshfx.PacketType, []byte, error) {
	if c.buf == nil {
		c.buf = make([]byte, max(c.maxPacket, 4))
	}

	return sshfx.ReadPacket(c.rd, c.buf, c.maxPacket)
}

// Close closes the write side of the stream, then any other attached closers.
func (c *streamChannel) Close() error {
	err := c.wr.Close()

	for _, cl := range c.closers {
		if cerr := cl.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	return errors.Wrap(err, "sftp: close channel")
}
