package sftpext

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		is   error
		want string
	}{
		{
			err:  &ExtensionUnsupportedError{Extension: "limits@openssh.com"},
			is:   ErrExtensionUnsupported,
			want: `sftp: extension "limits@openssh.com" not supported by server`,
		},
		{
			err:  &ProtocolError{Op: "negotiate", Err: io.ErrUnexpectedEOF},
			is:   ErrProtocol,
			want: "sftp: negotiate: protocol error: unexpected EOF",
		},
		{
			err: &ReplyStatusError{
				Op:       "statvfs@openssh.com",
				Type:     sshfx.PacketTypeStatus,
				Accepted: []sshfx.PacketType{sshfx.PacketTypeExtendedReply},
				Status:   &sshfx.StatusPacket{StatusCode: sshfx.StatusNoSuchFile},
			},
			is:   ErrReplyStatus,
			want: "sftp: statvfs@openssh.com: unexpected reply SSH_FXP_STATUS, want SSH_FXP_EXTENDED_REPLY (sftp: SSH_FX_NO_SUCH_FILE)",
		},
		{
			err:  &CardinalityError{Op: "home-directory", What: "names", Want: 1, AtMost: true, Got: 3},
			is:   ErrUnexpectedCardinality,
			want: "sftp: home-directory: expected at most 1 names, got 3",
		},
		{
			err:  &CardinalityError{Op: "users-groups-by-id@openssh.com", What: "group names", Want: 2, Got: 1},
			is:   ErrUnexpectedCardinality,
			want: "sftp: users-groups-by-id@openssh.com: expected 2 group names, got 1",
		},
	}

	for _, tt := range tests {
		assert.EqualError(t, tt.err, tt.want)
		assert.True(t, errors.Is(tt.err, tt.is), "%T is %v", tt.err, tt.is)
		assert.True(t, errors.Is(errors.Wrap(tt.err, "wrapped"), tt.is), "wrapped %T is %v", tt.err, tt.is)
	}
}

func TestProtocolErrorUnwrap(t *testing.T) {
	err := &ProtocolError{Op: "limits@openssh.com", Err: sshfx.ErrShortPacket}

	assert.ErrorIs(t, err, sshfx.ErrShortPacket)
	assert.ErrorIs(t, err, ErrProtocol)
	assert.NotErrorIs(t, err, ErrReplyStatus)
}

func TestResultOf(t *testing.T) {
	assert.Equal(t, ResultOK, resultOf(nil))
	assert.Equal(t, ResultUnsupported, resultOf(&ExtensionUnsupportedError{}))
	assert.Equal(t, ResultProtocol, resultOf(&ProtocolError{}))
	assert.Equal(t, ResultReplyStatus, resultOf(&ReplyStatusError{}))
	assert.Equal(t, ResultCardinality, resultOf(&CardinalityError{}))
	assert.Equal(t, ResultError, resultOf(io.EOF))
}
