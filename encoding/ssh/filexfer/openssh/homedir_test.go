package openssh

import (
	"bytes"
	"testing"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

var _ sshfx.PacketMarshaller = &HomeDirectoryExtendedPacket{}

func init() {
	RegisterExtensionHomeDirectory()
}

func TestHomeDirectoryExtendedPacket(t *testing.T) {
	const (
		id       = 42
		username = "alice"
	)

	ep := &HomeDirectoryExtendedPacket{
		Username: username,
	}

	data, err := sshfx.ComposePacket(ep.MarshalPacket(id, nil))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 32,
		200,
		0x00, 0x00, 0x00, 42,
		0x00, 0x00, 0x00, 14, 'h', 'o', 'm', 'e', '-', 'd', 'i', 'r', 'e', 'c', 't', 'o', 'r', 'y',
		0x00, 0x00, 0x00, 5, 'a', 'l', 'i', 'c', 'e',
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalPacket() = %X, but wanted %X", data, want)
	}

	var p sshfx.ExtendedPacket

	// UnmarshalPacketBody assumes the (length, type, request-id) have already been consumed.
	if err := p.UnmarshalPacketBody(sshfx.NewBuffer(data[9:])); err != nil {
		t.Fatal("unexpected error:", err)
	}

	ep, ok := p.Data.(*HomeDirectoryExtendedPacket)
	if !ok {
		t.Fatalf("UnmarshaledPacketBody(): Data was type %T, but expected *HomeDirectoryExtendedPacket", p.Data)
	}

	if ep.Username != username {
		t.Errorf("UnmarshalPacketBody(): Username was %q, but expected %q", ep.Username, username)
	}
}

// An empty username asks for the home directory of the authenticated user.
func TestHomeDirectoryExtendedPacketEmptyUsername(t *testing.T) {
	ep := &HomeDirectoryExtendedPacket{}

	data, err := ep.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	if want := []byte{0x00, 0x00, 0x00, 0x00}; !bytes.Equal(data, want) {
		t.Errorf("MarshalBinary() = %X, but wanted %X", data, want)
	}
}
