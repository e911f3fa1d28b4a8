package sftpext

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
	"github.com/sftpext/sftpext/encoding/ssh/filexfer/openssh"
)

func init() {
	openssh.RegisterExtensions()
}

// replyFunc returns the full framed reply to an extended request, or nil to send nothing.
type replyFunc func(reqid uint32, req *sshfx.ExtendedPacket) []byte

type received struct {
	typ  sshfx.PacketType
	body []byte
}

// fakeServer answers SSH_FXP_INIT with a fixed SSH_FXP_VERSION,
// and SSH_FXP_EXTENDED with whatever reply returns.
// Every received packet is recorded.
type fakeServer struct {
	version uint32
	exts    []*sshfx.ExtensionPair

	// initReply, if set, is sent instead of the SSH_FXP_VERSION.
	initReply []byte

	reply replyFunc

	mu       sync.Mutex
	received []received
	requests []*sshfx.ExtendedPacket
}

func newFakeServer(exts ...*sshfx.ExtensionPair) *fakeServer {
	return &fakeServer{
		version: sshfx.ProtocolVersion,
		exts:    exts,
	}
}

func (s *fakeServer) serve(rd io.Reader, wr io.WriteCloser) {
	defer wr.Close()

	for {
		typ, body, err := sshfx.ReadPacket(rd, nil, sshfx.DefaultMaxPacketLength)
		if err != nil {
			return
		}

		s.mu.Lock()
		s.received = append(s.received, received{typ: typ, body: append([]byte(nil), body...)})
		s.mu.Unlock()

		var out []byte

		switch typ {
		case sshfx.PacketTypeInit:
			out = s.initReply
			if out == nil {
				verPkt := &sshfx.VersionPacket{
					Version:    s.version,
					Extensions: s.exts,
				}
				out, _ = verPkt.MarshalBinary()
			}

		case sshfx.PacketTypeExtended:
			var raw sshfx.RawPacket
			if err := raw.UnmarshalPacketBody(sshfx.NewBuffer(body)); err != nil {
				return
			}

			req := new(sshfx.ExtendedPacket)
			if err := req.UnmarshalPacketBody(&raw.Data); err != nil {
				return
			}

			s.mu.Lock()
			s.requests = append(s.requests, req)
			s.mu.Unlock()

			if s.reply != nil {
				out = s.reply(raw.RequestID, req)
			}
		}

		if out == nil {
			continue
		}

		if _, err := wr.Write(out); err != nil {
			return
		}
	}
}

func (s *fakeServer) packets() []received {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]received(nil), s.received...)
}

func (s *fakeServer) lastRequest() *sshfx.ExtendedPacket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

// pipes returns the client and server ends of two io.Pipes.
func pipes() (cr io.Reader, cw io.WriteCloser, sr io.Reader, sw io.WriteCloser) {
	cr, sw = io.Pipe()
	sr, cw = io.Pipe()
	return cr, cw, sr, sw
}

// clientServerPair starts s and returns a negotiated client connected to it.
func clientServerPair(t *testing.T, s *fakeServer, opts ...ClientOption) *Client {
	t.Helper()

	cr, cw, sr, sw := pipes()
	go s.serve(sr, sw)

	cl, err := NewClientPipe(context.Background(), cr, cw, opts...)
	require.NoError(t, err)

	t.Cleanup(func() { cl.Close() })

	return cl
}

// marshalReply frames p as a reply to reqid.
func marshalReply(p sshfx.PacketMarshaller, reqid uint32) []byte {
	data, err := sshfx.ComposePacket(p.MarshalPacket(reqid, nil))
	if err != nil {
		panic(err)
	}
	return data
}

// rawReply frames an arbitrary body as a reply of the given type.
func rawReply(typ sshfx.PacketType, reqid uint32, data []byte) []byte {
	p := &sshfx.RawPacket{
		Type:      typ,
		RequestID: reqid,
		Data:      *sshfx.NewBuffer(data),
	}
	return marshalReply(p, reqid)
}

func statusReply(code sshfx.Status) replyFunc {
	return func(reqid uint32, _ *sshfx.ExtendedPacket) []byte {
		return marshalReply(&sshfx.StatusPacket{
			StatusCode:   code,
			ErrorMessage: code.String(),
		}, reqid)
	}
}
