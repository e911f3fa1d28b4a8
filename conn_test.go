package sftpext

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

type nopWriteCloser struct {
	io.Writer
	closed bool
}

func (w *nopWriteCloser) Close() error {
	w.closed = true
	return nil
}

func TestStreamChannel(t *testing.T) {
	var out bytes.Buffer
	wr := &nopWriteCloser{Writer: &out}

	in := bytes.NewReader([]byte{
		0x00, 0x00, 0x00, 5, 201, 0x00, 0x00, 0x00, 7,
		0x00, 0x00, 0x00, 1, 2,
	})

	ch := NewStreamChannel(in, wr)

	require.NoError(t, ch.SendPacket(sshfx.PacketTypeInit, []byte{0x00, 0x00, 0x00, 3}))
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 5, 1, 0x00, 0x00, 0x00, 3}, out.Bytes())

	typ, body, err := ch.RecvPacket()
	require.NoError(t, err)
	assert.Equal(t, sshfx.PacketTypeExtendedReply, typ)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 7}, body)

	typ, body, err = ch.RecvPacket()
	require.NoError(t, err)
	assert.Equal(t, sshfx.PacketTypeVersion, typ)
	assert.Empty(t, body)

	_, _, err = ch.RecvPacket()
	assert.Equal(t, io.EOF, err)

	require.NoError(t, ch.Close())
	assert.True(t, wr.closed)
}

func TestStreamChannelMaxPacket(t *testing.T) {
	in := bytes.NewReader([]byte{0x00, 0x00, 0x00, 9, 201, 0, 0, 0, 1, 0, 0, 0, 0})

	ch := newStreamChannel(in, &nopWriteCloser{Writer: io.Discard}, 8)

	_, _, err := ch.RecvPacket()
	assert.Equal(t, sshfx.ErrLongPacket, err)
}
