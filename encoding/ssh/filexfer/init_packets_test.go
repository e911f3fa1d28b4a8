package filexfer

import (
	"bytes"
	"testing"
)

func TestInitPacket(t *testing.T) {
	var version uint8 = 3

	p := &InitPacket{
		Version: uint32(version),
	}

	buf, err := p.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 5,
		1,
		0x00, 0x00, 0x00, version,
	}

	if !bytes.Equal(buf, want) {
		t.Fatalf("MarshalBinary() = %X, but wanted %X", buf, want)
	}

	*p = InitPacket{}

	// UnmarshalBinary assumes the uint32(length) + uint8(type) have already been consumed.
	if err := p.UnmarshalBinary(buf[5:]); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if p.Version != uint32(version) {
		t.Errorf("UnmarshalBinary(): Version was %d, but expected %d", p.Version, version)
	}

	if len(p.Extensions) != 0 {
		t.Errorf("UnmarshalBinary(): len(p.Extensions) was %d, but expected 0", len(p.Extensions))
	}
}

func TestVersionPacket(t *testing.T) {
	var version uint8 = 3

	p := &VersionPacket{
		Version: uint32(version),
		Extensions: []*ExtensionPair{
			{
				Name: "foo",
				Data: "1",
			},
			{
				Name: "foo",
				Data: "2",
			},
		},
	}

	buf, err := p.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 29,
		2,
		0x00, 0x00, 0x00, version,
		0x00, 0x00, 0x00, 3, 'f', 'o', 'o',
		0x00, 0x00, 0x00, 1, '1',
		0x00, 0x00, 0x00, 3, 'f', 'o', 'o',
		0x00, 0x00, 0x00, 1, '2',
	}

	if !bytes.Equal(buf, want) {
		t.Fatalf("MarshalBinary() = %X, but wanted %X", buf, want)
	}

	*p = VersionPacket{}

	// UnmarshalBinary assumes the uint32(length) + uint8(type) have already been consumed.
	if err := p.UnmarshalBinary(buf[5:]); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if p.Version != uint32(version) {
		t.Errorf("UnmarshalBinary(): Version was %d, but expected %d", p.Version, version)
	}

	if len(p.Extensions) != 2 {
		t.Fatalf("UnmarshalBinary(): len(p.Extensions) was %d, but expected %d", len(p.Extensions), 2)
	}

	for i, data := range []string{"1", "2"} {
		if got, want := p.Extensions[i].Name, "foo"; got != want {
			t.Errorf("UnmarshalBinary(): p.Extensions[%d].Name was %q, but expected %q", i, got, want)
		}

		if got := p.Extensions[i].Data; got != data {
			t.Errorf("UnmarshalBinary(): p.Extensions[%d].Data was %q, but expected %q", i, got, data)
		}
	}
}

func TestVersionPacketTruncatedExtension(t *testing.T) {
	var p VersionPacket

	err := p.UnmarshalBinary([]byte{
		0x00, 0x00, 0x00, 3,
		0x00, 0x00, 0x00, 3, 'f', 'o', 'o',
	})
	if err != ErrShortPacket {
		t.Errorf("UnmarshalBinary() = %v, but wanted %v", err, ErrShortPacket)
	}
}
