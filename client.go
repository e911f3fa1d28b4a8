package sftpext

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

// RequestObserver is told about every extended operation once it completes.
// The result is one of the Result constants.
type RequestObserver interface {
	ObserveRequest(extension, result string, d time.Duration)
}

// Results reported to a RequestObserver.
const (
	ResultOK          = "ok"
	ResultUnsupported = "unsupported"
	ResultProtocol    = "protocol_error"
	ResultReplyStatus = "reply_status"
	ResultCardinality = "cardinality"
	ResultError       = "error"
)

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ErrExtensionUnsupported):
		return ResultUnsupported
	case errors.Is(err, ErrProtocol):
		return ResultProtocol
	case errors.Is(err, ErrReplyStatus):
		return ResultReplyStatus
	case errors.Is(err, ErrUnexpectedCardinality):
		return ResultCardinality
	}

	return ResultError
}

// ClientOption specifies an optional that can be set on a client.
type ClientOption func(*Client) error

// WithLogger sets the logger used for debug records.
// A nil logger is ignored.
func WithLogger(l *slog.Logger) ClientOption {
	return func(cl *Client) error {
		if l != nil {
			cl.logger = l
		}
		return nil
	}
}

// WithMetrics registers an observer of every extended operation.
func WithMetrics(o RequestObserver) ClientOption {
	return func(cl *Client) error {
		cl.observer = o
		return nil
	}
}

// WithMaxPacketLength sets the maximum length of a packet that the client will accept.
// It only applies to the channels this package creates itself, from NewClientPipe and NewClient.
//
// The maximum packet length can only be increased,
// if an attempt is made to set this value lower than it currently is,
// it will simply not perform any operation.
func WithMaxPacketLength(length int) ClientOption {
	return func(cl *Client) error {
		// This has to be cast to int64 to safely perform this test on 32-bit archs.
		if int64(length) > math.MaxUint32 {
			return errors.Errorf("sftp: max packet length must fit in a uint32: %d", length)
		}

		if length < 0 {
			return nil
		}

		cl.maxPacket = max(cl.maxPacket, uint32(length))
		return nil
	}
}

// WithWorkingDirectory sets the initial emulated working directory, as if by Chdir.
func WithWorkingDirectory(dir string) ClientOption {
	return func(cl *Client) error {
		cl.cwd = dir
		return nil
	}
}

// Client negotiates and issues OpenSSH extended requests over a single Channel.
//
// A Client may be used from multiple goroutines,
// request/reply exchanges are serialized as the protocol layer does no pipelining.
type Client struct {
	ch Channel

	maxPacket uint32
	logger    *slog.Logger
	observer  RequestObserver

	mu     sync.Mutex // serializes exchanges on ch
	reqid  uint32
	broken atomic.Bool

	state      sync.RWMutex // protects the fields below
	negotiated bool
	version    uint32
	exts       []sshfx.ExtensionPair
	cwd        string
}

// New returns a Client on the given channel without performing the handshake.
// Until Negotiate succeeds, every extended operation fails with ErrExtensionUnsupported.
func New(ch Channel, opts ...ClientOption) (*Client, error) {
	cl := &Client{
		ch:        ch,
		maxPacket: sshfx.DefaultMaxPacketLength,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(cl); err != nil {
			return nil, err
		}
	}

	return cl, nil
}

// NewClientPipe creates a new client given a Reader and WriteCloser, and negotiates with the server.
// This can be used for connecting to an SFTP server over TCP/TLS, or by using the system's ssh client program.
//
// The given context is only used for the negotiation of init and version packets.
func NewClientPipe(ctx context.Context, rd io.Reader, wr io.WriteCloser, opts ...ClientOption) (*Client, error) {
	return newClientPipe(ctx, rd, wr, nil, opts...)
}

func newClientPipe(ctx context.Context, rd io.Reader, wr io.WriteCloser, closer io.Closer, opts ...ClientOption) (*Client, error) {
	cl, err := New(nil, opts...)
	if err != nil {
		return nil, err
	}

	var closers []io.Closer
	if closer != nil {
		closers = append(closers, closer)
	}

	cl.ch = newStreamChannel(rd, wr, cl.maxPacket, closers...)

	if _, err := cl.Negotiate(ctx); err != nil {
		cl.Close()
		return nil, err
	}

	return cl, nil
}

// NewClient opens the sftp subsystem in a new session on conn, and negotiates with the server.
// The context is only used during negotiation.
func NewClient(ctx context.Context, conn *ssh.Client, opts ...ClientOption) (*Client, error) {
	s, err := conn.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "sftp: new session")
	}

	if err := s.RequestSubsystem("sftp"); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "sftp: request subsystem")
	}

	w, err := s.StdinPipe()
	if err != nil {
		s.Close()
		return nil, errors.Wrap(err, "sftp: stdin pipe")
	}

	r, err := s.StdoutPipe()
	if err != nil {
		s.Close()
		return nil, errors.Wrap(err, "sftp: stdout pipe")
	}

	return newClientPipe(ctx, r, w, s, opts...)
}

// SetLogger sets the logger for the client.
func (cl *Client) SetLogger(l *slog.Logger) {
	cl.state.Lock()
	defer cl.state.Unlock()

	cl.logger = l
}

// Logger returns the logger for the client.
func (cl *Client) Logger() *slog.Logger {
	cl.state.RLock()
	defer cl.state.RUnlock()

	if cl.logger == nil {
		return slog.Default()
	}
	return cl.logger
}

// Close closes the underlying channel.
func (cl *Client) Close() error {
	if cl.ch == nil {
		return nil
	}
	return cl.ch.Close()
}

// Negotiate sends SSH_FXP_INIT and records the version and extensions from the server's SSH_FXP_VERSION.
// A server version other than 3 is accepted.
//
// It may only succeed once per client, later calls return ErrAlreadyNegotiated without any I/O.
func (cl *Client) Negotiate(ctx context.Context) (uint32, error) {
	const op = "negotiate"

	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.state.RLock()
	negotiated := cl.negotiated
	cl.state.RUnlock()

	if negotiated {
		return 0, ErrAlreadyNegotiated
	}

	initPkt := &sshfx.InitPacket{
		Version: sshfx.ProtocolVersion,
	}

	typ, body, err := sshfx.SplitPacket(initPkt.MarshalPacket())
	if err != nil {
		return 0, errors.Wrap(err, "sftp: negotiate: marshal init")
	}

	var verPkt sshfx.VersionPacket

	err = cl.transact(ctx, op, typ, body, func(typ sshfx.PacketType, body []byte) error {
		if typ != sshfx.PacketTypeVersion {
			return &ProtocolError{
				Op:  op,
				Err: errors.Errorf("unexpected packet type %s, want %s", typ, sshfx.PacketTypeVersion),
			}
		}

		if err := verPkt.UnmarshalPacketBody(sshfx.NewBuffer(body)); err != nil {
			return &ProtocolError{Op: op, Err: err}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	exts := make([]sshfx.ExtensionPair, 0, len(verPkt.Extensions))
	for _, ext := range verPkt.Extensions {
		exts = append(exts, *ext)
	}

	cl.state.Lock()
	cl.negotiated = true
	cl.version = verPkt.Version
	cl.exts = exts
	cl.state.Unlock()

	logger := cl.Logger()
	if verPkt.Version != sshfx.ProtocolVersion {
		logger.Debug("server protocol version differs", "server", verPkt.Version, "client", sshfx.ProtocolVersion)
	}
	logger.Debug("server extensions", "version", verPkt.Version, "extensions", exts)

	return verPkt.Version, nil
}

// transact sends one packet and hands the reply to decode, cl.mu must be held.
// The reply body is only valid during decode.
//
// If ctx is done before the reply arrives, the exchange is abandoned,
// and the client is marked broken, as a late reply would desynchronize the channel.
// Any other failure that is not a well-formed reply of the wrong shape also marks the client broken.
func (cl *Client) transact(ctx context.Context, op string, typ sshfx.PacketType, body []byte, decode func(sshfx.PacketType, []byte) error) error {
	if cl.broken.Load() {
		return ErrConnectionBroken
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	errch := make(chan error, 1)

	go func() {
		if err := cl.ch.SendPacket(typ, body); err != nil {
			errch <- errors.Wrapf(err, "sftp: %s: send %s", op, typ)
			return
		}

		rtyp, rbody, err := cl.ch.RecvPacket()
		if err != nil {
			if errors.Is(err, sshfx.ErrShortPacket) || errors.Is(err, sshfx.ErrLongPacket) {
				errch <- &ProtocolError{Op: op, Err: err}
				return
			}
			errch <- errors.Wrapf(err, "sftp: %s: receive reply", op)
			return
		}

		errch <- decode(rtyp, rbody)
	}()

	select {
	case err := <-errch:
		if err != nil && !isReplyError(err) {
			cl.broken.Store(true)
		}
		return err

	case <-ctx.Done():
		cl.broken.Store(true)
		return ctx.Err()
	}
}

// Broken reports whether an earlier failure left the channel unusable.
// Every further operation on a broken client fails with ErrConnectionBroken.
func (cl *Client) Broken() bool {
	return cl.broken.Load()
}

// isReplyError reports whether err came from a complete, well-framed reply.
func isReplyError(err error) bool {
	return errors.Is(err, ErrReplyStatus) || errors.Is(err, ErrUnexpectedCardinality)
}

// roundTrip sends an extended request and decodes its reply.
// The reply type must be one of accept, and its request-id must match the request.
// decode receives the reply body after the request-id, and must not keep it.
func (cl *Client) roundTrip(ctx context.Context, op string, req sshfx.PacketMarshaller, accept []sshfx.PacketType, decode func(*sshfx.RawPacket) error) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.reqid++
	reqid := cl.reqid

	typ, body, err := sshfx.SplitPacket(req.MarshalPacket(reqid, nil))
	if err != nil {
		return errors.Wrapf(err, "sftp: %s: marshal request", op)
	}

	return cl.transact(ctx, op, typ, body, func(rtyp sshfx.PacketType, rbody []byte) error {
		raw := &sshfx.RawPacket{
			Type: rtyp,
		}

		if err := raw.UnmarshalPacketBody(sshfx.NewBuffer(rbody)); err != nil {
			return &ProtocolError{Op: op, Err: err}
		}

		if raw.RequestID != reqid {
			return &ProtocolError{
				Op:  op,
				Err: errors.Errorf("unexpected request id %d, want %d", raw.RequestID, reqid),
			}
		}

		if !acceptable(raw.Type, accept) {
			rerr := &ReplyStatusError{
				Op:       op,
				Type:     raw.Type,
				Accepted: accept,
			}

			if raw.Type == sshfx.PacketTypeStatus {
				var status sshfx.StatusPacket
				if err := status.UnmarshalPacketBody(&raw.Data); err == nil {
					rerr.Status = &status
				}
			}

			return rerr
		}

		if err := decode(raw); err != nil {
			if errors.Is(err, sshfx.ErrShortPacket) {
				return &ProtocolError{Op: op, Err: err}
			}
			return err
		}

		return nil
	})
}

func acceptable(typ sshfx.PacketType, accept []sshfx.PacketType) bool {
	for _, a := range accept {
		if typ == a {
			return true
		}
	}

	return false
}

// call runs an extended operation: it checks the extension is advertised, then does the round trip,
// and reports the outcome to the observer.
func (cl *Client) call(ctx context.Context, ext string, req sshfx.PacketMarshaller, accept []sshfx.PacketType, decode func(*sshfx.RawPacket) error) (err error) {
	start := time.Now()
	defer func() {
		if cl.observer != nil {
			cl.observer.ObserveRequest(ext, resultOf(err), time.Since(start))
		}
	}()

	if !cl.HasExtension(ext) {
		return &ExtensionUnsupportedError{Extension: ext}
	}

	return cl.roundTrip(ctx, ext, req, accept, decode)
}

var (
	acceptExtendedReply = []sshfx.PacketType{sshfx.PacketTypeExtendedReply}
	acceptNameOrReply   = []sshfx.PacketType{sshfx.PacketTypeName, sshfx.PacketTypeExtendedReply}
)

// callPath runs home-directory and expand-path, which both reply with zero or one name.
func (cl *Client) callPath(ctx context.Context, ext string, req sshfx.PacketMarshaller) (string, bool, error) {
	var resp sshfx.PathPseudoPacket

	err := cl.call(ctx, ext, req, acceptNameOrReply, func(raw *sshfx.RawPacket) error {
		if err := resp.UnmarshalPacketBody(&raw.Data); err != nil {
			return err
		}

		if resp.Count > 1 {
			return &CardinalityError{
				Op:     ext,
				What:   "names",
				Want:   1,
				AtMost: true,
				Got:    int(resp.Count),
			}
		}

		if resp.Present() && !utf8.ValidString(resp.Path) {
			return &ProtocolError{Op: ext, Err: errInvalidUTF8}
		}

		return nil
	})
	if err != nil {
		return "", false, err
	}

	return resp.Path, resp.Present(), nil
}
