package sftpext

// sftpext integration tests
// enable with -integration

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const debuglevel = "DEBUG"

var (
	testIntegration = flag.Bool("integration", false, "perform integration tests against sftp server process")
	testSftpServer  = flag.String("sftp_server", "/usr/lib/openssh/sftp-server", "location of the sftp server binary")
)

// testClient returns a *Client connected to a locally running sftp-server.
func testClient(t *testing.T) *Client {
	if !*testIntegration {
		t.Skip("skipping integration test")
	}

	cmd := exec.Command(*testSftpServer, "-e", "-R", "-l", debuglevel) // log to stderr, read only
	cmd.Stderr = os.Stdout

	pw, err := cmd.StdinPipe()
	require.NoError(t, err)

	pr, err := cmd.StdoutPipe()
	require.NoError(t, err)

	if err := cmd.Start(); err != nil {
		t.Skipf("could not start sftp-server process: %v", err)
	}

	cl, err := NewClientPipe(context.Background(), pr, pw)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		t.Fatal(err)
	}

	t.Cleanup(func() {
		cl.Close()
		cmd.Wait()
	})

	return cl
}

func TestIntegrationExtensions(t *testing.T) {
	cl := testClient(t)

	for _, ext := range cl.Extensions() {
		t.Logf("%s", ext)
	}

	assert.True(t, cl.HasExtension(ExtensionStatVFS))
}

func TestIntegrationStatVFS(t *testing.T) {
	cl := testClient(t)

	st, err := cl.StatVFS("/")
	require.NoError(t, err)

	assert.NotZero(t, st.Bsize)
	assert.NotZero(t, st.Namemax)
}

func TestIntegrationHomeDirectory(t *testing.T) {
	cl := testClient(t)
	if !cl.HasExtension(ExtensionHomeDirectory) {
		t.Skip("server does not support home-directory")
	}

	dir, ok, err := cl.HomeDirectory("")
	require.NoError(t, err)
	assert.True(t, ok)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, home, dir)
}

func TestIntegrationUsersGroupsByID(t *testing.T) {
	cl := testClient(t)
	if !cl.HasExtension(ExtensionUsersGroupsByID) {
		t.Skip("server does not support users-groups-by-id")
	}

	users, groups, err := cl.UsersGroupsByID([]uint32{0}, []uint32{0})
	require.NoError(t, err)
	assert.Equal(t, []string{"root"}, users)
	assert.Len(t, groups, 1)
}

func TestIntegrationExpandPath(t *testing.T) {
	cl := testClient(t)
	if !cl.HasExtension(ExtensionExpandPath) {
		t.Skip("server does not support expand-path")
	}

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	dir, ok, err := cl.ExpandPath("~", AdjustAuto)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, home, dir)
}

func TestIntegrationLimits(t *testing.T) {
	cl := testClient(t)
	if !cl.HasExtension(ExtensionLimits) {
		t.Skip("server does not support limits")
	}

	l, err := cl.Limits()
	require.NoError(t, err)
	assert.NotZero(t, l.MaxPacketLength)
}
