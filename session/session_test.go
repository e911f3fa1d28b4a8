package session

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sftpext/sftpext"
	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
	"github.com/sftpext/sftpext/encoding/ssh/filexfer/openssh"
)

// serveStatVFS answers SSH_FXP_INIT advertising statvfs@openssh.com,
// and every statvfs request with a fixed reply.
func serveStatVFS(rd io.Reader, wr io.WriteCloser) {
	defer wr.Close()

	for {
		typ, body, err := sshfx.ReadPacket(rd, nil, sshfx.DefaultMaxPacketLength)
		if err != nil {
			return
		}

		var out []byte

		switch typ {
		case sshfx.PacketTypeInit:
			ver := &sshfx.VersionPacket{
				Version:    sshfx.ProtocolVersion,
				Extensions: []*sshfx.ExtensionPair{openssh.ExtensionStatVFS()},
			}
			out, _ = ver.MarshalBinary()

		case sshfx.PacketTypeExtended:
			var raw sshfx.RawPacket
			if err := raw.UnmarshalPacketBody(sshfx.NewBuffer(body)); err != nil {
				return
			}

			reply := &openssh.StatVFSExtendedReplyPacket{
				BlockSize:    4096,
				FragmentSize: 4096,
				Blocks:       100,
				BlocksAvail:  25,
			}
			out, _ = sshfx.ComposePacket(reply.MarshalPacket(raw.RequestID, nil))
		}

		if out == nil {
			continue
		}

		if _, err := wr.Write(out); err != nil {
			return
		}
	}
}

type closeCounter struct {
	mu sync.Mutex
	n  int
}

func (c *closeCounter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.n++
	return nil
}

func (c *closeCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.n
}

type stubDialer struct {
	mu     sync.Mutex
	dials  int
	closer *closeCounter
}

func (d *stubDialer) dial(ctx context.Context, cfg *Config) (*sftpext.Client, io.Closer, error) {
	d.mu.Lock()
	d.dials++
	d.mu.Unlock()

	cr, sw := io.Pipe()
	sr, cw := io.Pipe()
	go serveStatVFS(sr, sw)

	cl, err := sftpext.NewClientPipe(ctx, cr, cw, cfg.ClientOptions...)
	if err != nil {
		return nil, nil, err
	}

	return cl, d.closer, nil
}

func (d *stubDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.dials
}

func newTestManager() (*Manager, *stubDialer) {
	d := &stubDialer{closer: new(closeCounter)}
	return NewManager(Config{Host: "example.com"}, WithDialer(d.dial)), d
}

func TestConfigAddr(t *testing.T) {
	assert.Equal(t, "example.com:22", (&Config{Host: "example.com"}).Addr())
	assert.Equal(t, "example.com:2222", (&Config{Host: "example.com", Port: 2222}).Addr())
	assert.Equal(t, "[::1]:22", (&Config{Host: "::1"}).Addr())
}

func TestManagerRefCount(t *testing.T) {
	m, d := newTestManager()
	ctx := context.Background()

	c1, err := m.Acquire(ctx)
	require.NoError(t, err)

	c2, err := m.Acquire(ctx)
	require.NoError(t, err)

	assert.Same(t, c1, c2)
	assert.Equal(t, 1, d.count())
	assert.Equal(t, 2, m.Refs())

	require.NoError(t, m.Release())
	assert.Zero(t, d.closer.count(), "connection closed while still referenced")

	require.NoError(t, m.Release())
	assert.Equal(t, 1, d.closer.count())
	assert.Zero(t, m.Refs())

	// The next Acquire reconnects.
	c3, err := m.Acquire(ctx)
	require.NoError(t, err)
	assert.NotSame(t, c1, c3)
	assert.Equal(t, 2, d.count())

	require.NoError(t, m.Release())
}

func TestManagerReconnectsBrokenClient(t *testing.T) {
	m, d := newTestManager()
	ctx := context.Background()

	c1, err := m.Acquire(ctx)
	require.NoError(t, err)

	// Failing to send on a closed channel leaves the client broken.
	require.NoError(t, c1.Close())
	_, err = c1.StatVFS("/")
	require.Error(t, err)
	require.True(t, c1.Broken())

	c2, err := m.Acquire(ctx)
	require.NoError(t, err)

	assert.NotSame(t, c1, c2)
	assert.False(t, c2.Broken())
	assert.Equal(t, 2, d.count())
	assert.Equal(t, 1, d.closer.count())
	assert.Equal(t, 2, m.Refs())

	_, err = c1.StatVFS("/")
	assert.ErrorIs(t, err, sftpext.ErrConnectionBroken)

	st, err := c2.StatVFS("/")
	require.NoError(t, err)
	assert.EqualValues(t, 100, st.Blocks)

	require.NoError(t, m.Release())
	require.NoError(t, m.Release())
	assert.Equal(t, 2, d.closer.count())
}

func TestManagerReleaseWithoutAcquire(t *testing.T) {
	m, _ := newTestManager()
	assert.Error(t, m.Release())
}

func TestManagerDialError(t *testing.T) {
	m := NewManager(Config{Host: "example.com"}, WithDialer(func(context.Context, *Config) (*sftpext.Client, io.Closer, error) {
		return nil, nil, io.ErrUnexpectedEOF
	}))

	_, err := m.Acquire(context.Background())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Zero(t, m.Refs())
}

func TestManagerDo(t *testing.T) {
	m, d := newTestManager()

	err := m.Do(context.Background(), func(cl *sftpext.Client) error {
		assert.Equal(t, 1, m.Refs())
		return io.EOF
	})
	assert.ErrorIs(t, err, io.EOF)

	assert.Zero(t, m.Refs())
	assert.Equal(t, 1, d.closer.count())
}

func TestManagerExtensions(t *testing.T) {
	m, _ := newTestManager()

	exts, err := m.Extensions(context.Background())
	require.NoError(t, err)

	require.Len(t, exts, 1)
	assert.Equal(t, "statvfs@openssh.com", exts[0].Name)
	assert.Equal(t, "2", exts[0].Data)
}

func TestManagerStatVFS(t *testing.T) {
	m, _ := newTestManager()

	st, err := m.StatVFS(context.Background(), "/data")
	require.NoError(t, err)

	assert.EqualValues(t, 4096*100, st.TotalSpace())
	assert.EqualValues(t, 4096*25, st.AvailableSpace())
	assert.Zero(t, m.Refs())
}
