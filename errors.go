package sftpext

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

// Sentinel errors, every typed error below matches one of these with errors.Is.
var (
	ErrExtensionUnsupported  = errors.New("sftp: extension not supported")
	ErrProtocol              = errors.New("sftp: protocol error")
	ErrReplyStatus           = errors.New("sftp: unexpected reply")
	ErrUnexpectedCardinality = errors.New("sftp: unexpected result cardinality")

	ErrAlreadyNegotiated = errors.New("sftp: already negotiated")
	ErrConnectionBroken  = errors.New("sftp: connection is out of sync and must be closed")

	errInvalidUTF8 = errors.New("invalid UTF-8 in reply")
)

// ExtensionUnsupportedError is returned when the server did not advertise the extension an operation needs.
// No packet is sent when this error is returned.
type ExtensionUnsupportedError struct {
	Extension string
}

func (e *ExtensionUnsupportedError) Error() string {
	return fmt.Sprintf("sftp: extension %q not supported by server", e.Extension)
}

// Is reports whether target is ErrExtensionUnsupported.
func (e *ExtensionUnsupportedError) Is(target error) bool {
	return target == ErrExtensionUnsupported
}

// ProtocolError is returned for a malformed or unexpected packet.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("sftp: %s: protocol error: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrProtocol.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// ReplyStatusError is returned when the reply to an extended request has a packet type
// outside of those the operation accepts.
//
// Status is set when the reply was a decodable SSH_FXP_STATUS,
// it is informational only.
type ReplyStatusError struct {
	Op       string
	Type     sshfx.PacketType
	Accepted []sshfx.PacketType
	Status   *sshfx.StatusPacket
}

func (e *ReplyStatusError) Error() string {
	accepted := make([]string, len(e.Accepted))
	for i, typ := range e.Accepted {
		accepted[i] = typ.String()
	}

	msg := fmt.Sprintf("sftp: %s: unexpected reply %s, want %s", e.Op, e.Type, strings.Join(accepted, " or "))
	if e.Status != nil {
		msg += " (" + e.Status.Error() + ")"
	}

	return msg
}

// Is reports whether target is ErrReplyStatus.
func (e *ReplyStatusError) Is(target error) bool {
	return target == ErrReplyStatus
}

// CardinalityError is returned when a reply carries a number of results the operation does not allow.
type CardinalityError struct {
	Op string

	// What was counted, for example "names" or "group names".
	What string

	// Want is an upper bound when AtMost is set, and an exact count otherwise.
	Want   int
	AtMost bool

	Got int
}

func (e *CardinalityError) Error() string {
	if e.AtMost {
		return fmt.Sprintf("sftp: %s: expected at most %d %s, got %d", e.Op, e.Want, e.What, e.Got)
	}

	return fmt.Sprintf("sftp: %s: expected %d %s, got %d", e.Op, e.Want, e.What, e.Got)
}

// Is reports whether target is ErrUnexpectedCardinality.
func (e *CardinalityError) Is(target error) bool {
	return target == ErrUnexpectedCardinality
}
