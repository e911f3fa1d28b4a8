package openssh

import (
	"bytes"
	"testing"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

var _ sshfx.PacketMarshaller = &StatVFSExtendedPacket{}

func init() {
	RegisterExtensionStatVFS()
}

func TestStatVFSExtendedPacket(t *testing.T) {
	const (
		id   = 42
		path = "/foo"
	)

	ep := &StatVFSExtendedPacket{
		Path: path,
	}

	data, err := sshfx.ComposePacket(ep.MarshalPacket(id, nil))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 36,
		200,
		0x00, 0x00, 0x00, 42,
		0x00, 0x00, 0x00, 19, 's', 't', 'a', 't', 'v', 'f', 's', '@', 'o', 'p', 'e', 'n', 's', 's', 'h', '.', 'c', 'o', 'm',
		0x00, 0x00, 0x00, 4, '/', 'f', 'o', 'o',
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalPacket() = %X, but wanted %X", data, want)
	}

	var p sshfx.ExtendedPacket

	// UnmarshalPacketBody assumes the (length, type, request-id) have already been consumed.
	if err := p.UnmarshalPacketBody(sshfx.NewBuffer(data[9:])); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if p.ExtendedRequest != extensionStatVFS {
		t.Errorf("UnmarshalPacketBody(): ExtendedRequest was %q, but expected %q", p.ExtendedRequest, extensionStatVFS)
	}

	ep, ok := p.Data.(*StatVFSExtendedPacket)
	if !ok {
		t.Fatalf("UnmarshaledPacketBody(): Data was type %T, but expected *StatVFSExtendedPacket", p.Data)
	}

	if ep.Path != path {
		t.Errorf("UnmarshalPacketBody(): Path was %q, but expected %q", ep.Path, path)
	}
}

func TestStatVFSExtendedReplyPacket(t *testing.T) {
	const (
		id = 42
	)

	values := []uint64{4096, 4096, 1000, 800, 800, 100, 90, 90, 1, 0, 255}

	ep := &StatVFSExtendedReplyPacket{
		BlockSize:     values[0],
		FragmentSize:  values[1],
		Blocks:        values[2],
		BlocksFree:    values[3],
		BlocksAvail:   values[4],
		Files:         values[5],
		FilesFree:     values[6],
		FilesAvail:    values[7],
		FilesystemID:  values[8],
		MountFlags:    values[9],
		MaxNameLength: values[10],
	}

	data, err := sshfx.ComposePacket(ep.MarshalPacket(id, nil))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 93,
		201,
		0x00, 0x00, 0x00, 42,
	}
	for _, v := range values {
		want = append(want, 0, 0, 0, 0, 0, 0, byte(v>>8), byte(v))
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalPacket() = %X, but wanted %X", data, want)
	}

	*ep = StatVFSExtendedReplyPacket{}

	p := sshfx.ExtendedReplyPacket{
		Data: ep,
	}

	// UnmarshalPacketBody assumes the (length, type, request-id) have already been consumed.
	if err := p.UnmarshalPacketBody(sshfx.NewBuffer(data[9:])); err != nil {
		t.Fatal("unexpected error:", err)
	}

	got := []uint64{
		ep.BlockSize, ep.FragmentSize, ep.Blocks, ep.BlocksFree, ep.BlocksAvail,
		ep.Files, ep.FilesFree, ep.FilesAvail, ep.FilesystemID, ep.MountFlags, ep.MaxNameLength,
	}

	for i := range values {
		if got[i] != values[i] {
			t.Errorf("UnmarshalPacketBody(): field %d was %d, but expected %d", i, got[i], values[i])
		}
	}
}

// Trailing data after the eleven fields is tolerated, some servers append undocumented fields.
func TestStatVFSExtendedReplyPacketTrailingData(t *testing.T) {
	data := make([]byte, statVFSReplySize, statVFSReplySize+8)
	data[7] = 0x10 // BlockSize
	data[statVFSReplySize-1] = 0xff
	data = append(data, 0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef)

	var ep StatVFSExtendedReplyPacket
	if err := ep.UnmarshalBinary(data); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if ep.BlockSize != 0x10 {
		t.Errorf("UnmarshalBinary(): BlockSize was %d, but expected %d", ep.BlockSize, 0x10)
	}

	if ep.MaxNameLength != 0xff {
		t.Errorf("UnmarshalBinary(): MaxNameLength was %d, but expected %d", ep.MaxNameLength, 0xff)
	}
}

func TestStatVFSExtendedReplyPacketShort(t *testing.T) {
	var ep StatVFSExtendedReplyPacket

	if err := ep.UnmarshalBinary(make([]byte, statVFSReplySize-1)); err != sshfx.ErrShortPacket {
		t.Errorf("UnmarshalBinary() = %v, but wanted %v", err, sshfx.ErrShortPacket)
	}
}
