package session

import (
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// AuthOptions selects the SSH authentication methods to offer.
type AuthOptions struct {
	Password string

	KeyFile       string
	KeyPassphrase string

	UseAgent bool
	// AgentSocket defaults to $SSH_AUTH_SOCK.
	AgentSocket string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// AuthMethods builds the auth methods described by opts,
// public keys are offered before the password.
// The returned closer releases the agent connection, if any.
func AuthMethods(opts AuthOptions) ([]ssh.AuthMethod, io.Closer, error) {
	var methods []ssh.AuthMethod
	var closer io.Closer = nopCloser{}

	if opts.KeyFile != "" {
		signer, err := loadKey(opts.KeyFile, opts.KeyPassphrase)
		if err != nil {
			return nil, nil, err
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if opts.UseAgent {
		addr := opts.AgentSocket
		if addr == "" {
			addr = os.Getenv("SSH_AUTH_SOCK")
		}
		if addr == "" {
			return nil, nil, errors.New("ssh agent requested but SSH_AUTH_SOCK is not set")
		}

		conn, err := net.Dial("unix", addr)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect to ssh agent")
		}

		methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		closer = conn
	}

	if opts.Password != "" {
		methods = append(methods, ssh.Password(opts.Password))
	}

	if len(methods) == 0 {
		closer.Close()
		return nil, nil, errors.New("no ssh authentication method configured")
	}

	return methods, closer, nil
}

func loadKey(file, passphrase string) (ssh.Signer, error) {
	key, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read private key file")
	}

	var signer ssh.Signer
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse private key file %s", file)
	}

	return signer, nil
}

// DefaultKnownHostsFile returns ~/.ssh/known_hosts.
func DefaultKnownHostsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "known_hosts")
}

// HostKeyCallback verifies host keys against file.
// If insecure is set, any host key is accepted.
func HostKeyCallback(file string, insecure bool) (ssh.HostKeyCallback, error) {
	if insecure {
		return ssh.InsecureIgnoreHostKey(), nil
	}

	if file == "" {
		file = DefaultKnownHostsFile()
	}

	cb, err := knownhosts.New(file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load known_hosts")
	}

	return cb, nil
}
