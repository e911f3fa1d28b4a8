// Package session manages a shared, reference-counted SFTP extension client over SSH.
package session

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/sftpext/sftpext"
	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

// Config describes how to reach the SFTP server.
type Config struct {
	Host string
	Port int
	User string

	Auth            []ssh.AuthMethod
	HostKeyCallback ssh.HostKeyCallback

	// Timeout bounds the TCP connect and SSH handshake, zero means no limit.
	Timeout time.Duration

	ClientOptions []sftpext.ClientOption
}

// Addr returns the host:port to dial, the port defaults to 22.
func (c *Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// Dialer opens a negotiated client.
// The returned closer releases everything beneath the client, and is closed after the client.
type Dialer func(ctx context.Context, cfg *Config) (*sftpext.Client, io.Closer, error)

// DialSSH connects to cfg.Addr over SSH, and opens the sftp subsystem.
func DialSSH(ctx context.Context, cfg *Config) (*sftpext.Client, io.Closer, error) {
	addr := cfg.Addr()

	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "dial %s", addr)
	}

	sshConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            cfg.Auth,
		HostKeyCallback: cfg.HostKeyCallback,
		Timeout:         cfg.Timeout,
	}

	if cfg.Timeout > 0 {
		conn.SetDeadline(time.Now().Add(cfg.Timeout))
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		conn.Close()
		return nil, nil, errors.Wrapf(err, "ssh handshake with %s", addr)
	}

	conn.SetDeadline(time.Time{})

	sshClient := ssh.NewClient(c, chans, reqs)

	cl, err := sftpext.NewClient(ctx, sshClient, cfg.ClientOptions...)
	if err != nil {
		sshClient.Close()
		return nil, nil, err
	}

	return cl, sshClient, nil
}

// Manager shares one client between any number of users.
// The connection is opened on the first Acquire, and closed on the last Release.
type Manager struct {
	cfg    Config
	dial   Dialer
	logger *slog.Logger

	mu     sync.Mutex
	refs   int
	client *sftpext.Client
	closer io.Closer
}

// Option configures a Manager.
type Option func(*Manager)

// WithDialer replaces DialSSH.
func WithDialer(d Dialer) Option {
	return func(m *Manager) {
		m.dial = d
	}
}

// WithLogger sets the logger for the manager.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager returns a Manager for cfg. No connection is made until Acquire.
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		dial:   DialSSH,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.logger = m.logger.With("module", "session", "addr", cfg.Addr())

	return m
}

// Acquire returns the shared client, connecting if there is none.
// A client left broken by an earlier failure is closed and replaced by a new connection,
// holders of the old client keep their reference and see sftpext.ErrConnectionBroken.
// Every successful Acquire must be paired with a Release.
func (m *Manager) Acquire(ctx context.Context) (*sftpext.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil && m.client.Broken() {
		m.logger.Debug("dropping broken connection", "refs", m.refs)

		if err := m.closeLocked(); err != nil {
			m.logger.Debug("close broken connection", "err", err)
		}
	}

	if m.client == nil {
		m.logger.Debug("connecting")

		cl, closer, err := m.dial(ctx, &m.cfg)
		if err != nil {
			return nil, errors.Wrap(err, "session: connect")
		}

		m.client, m.closer = cl, closer
	}

	m.refs++

	return m.client, nil
}

// Release drops one reference, closing the client and its connection when none remain.
func (m *Manager) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refs == 0 {
		return errors.New("session: release without acquire")
	}

	m.refs--
	if m.refs > 0 || m.client == nil {
		return nil
	}

	m.logger.Debug("disconnecting")

	return m.closeLocked()
}

// closeLocked closes the client and its connection, m.mu must be held.
func (m *Manager) closeLocked() error {
	err := m.client.Close()
	if m.closer != nil {
		if cerr := m.closer.Close(); err == nil {
			err = cerr
		}
	}

	m.client, m.closer = nil, nil

	return errors.Wrap(err, "session: close")
}

// Refs returns the number of outstanding references.
func (m *Manager) Refs() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.refs
}

// Do runs fn with the shared client, holding a reference for the duration of the call.
func (m *Manager) Do(ctx context.Context, fn func(*sftpext.Client) error) (err error) {
	cl, err := m.Acquire(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if rerr := m.Release(); err == nil {
			err = rerr
		}
	}()

	return fn(cl)
}

// Extensions returns the extensions advertised by the server.
func (m *Manager) Extensions(ctx context.Context) ([]sshfx.ExtensionPair, error) {
	var exts []sshfx.ExtensionPair

	err := m.Do(ctx, func(cl *sftpext.Client) error {
		exts = cl.Extensions()
		return nil
	})

	return exts, err
}

// StatVFS returns the statistics of the filesystem holding path.
func (m *Manager) StatVFS(ctx context.Context, path string) (*sftpext.StatVFS, error) {
	var st *sftpext.StatVFS

	err := m.Do(ctx, func(cl *sftpext.Client) (err error) {
		m.logger.Info("retrieving statvfs", "path", path)

		st, err = cl.StatVFSContext(ctx, path)
		return err
	})

	return st, err
}
