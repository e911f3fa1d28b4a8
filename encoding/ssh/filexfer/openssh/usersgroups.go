package openssh

import (
	"fmt"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

const extensionUsersGroupsByID = "users-groups-by-id@openssh.com"

// RegisterExtensionUsersGroupsByID registers the "users-groups-by-id@openssh.com" extended packet with the encoding/ssh/filexfer package.
func RegisterExtensionUsersGroupsByID() {
	sshfx.RegisterExtendedPacketType(extensionUsersGroupsByID, func() sshfx.ExtendedData {
		return new(UsersGroupsByIDExtendedPacket)
	})
}

// ExtensionUsersGroupsByID returns an ExtensionPair suitable to append into an sshfx.InitPacket or sshfx.VersionPacket.
func ExtensionUsersGroupsByID() *sshfx.ExtensionPair {
	return &sshfx.ExtensionPair{
		Name: extensionUsersGroupsByID,
		Data: "1",
	}
}

// UsersGroupsByIDExtendedPacket defines the users-groups-by-id@openssh.com extend packet.
//
// Each id list is sent as a string whose contents are the ids packed as uint32 values.
type UsersGroupsByIDExtendedPacket struct {
	UIDs []uint32
	GIDs []uint32
}

// Type returns the SSH_FXP_EXTENDED packet type.
func (ep *UsersGroupsByIDExtendedPacket) Type() sshfx.PacketType {
	return sshfx.PacketTypeExtended
}

// ExtendedRequest returns the SSH_FXP_EXTENDED extended-request field associated with this packet type.
func (ep *UsersGroupsByIDExtendedPacket) ExtendedRequest() string {
	return extensionUsersGroupsByID
}

// MarshalPacket returns ep as a two-part binary encoding of the full extended packet.
func (ep *UsersGroupsByIDExtendedPacket) MarshalPacket(reqid uint32, b []byte) (header, payload []byte, err error) {
	p := &sshfx.ExtendedPacket{
		ExtendedRequest: extensionUsersGroupsByID,

		Data: ep,
	}
	return p.MarshalPacket(reqid, b)
}

func appendIDList(buf *sshfx.Buffer, ids []uint32) {
	buf.AppendUint32(uint32(4 * len(ids)))
	for _, id := range ids {
		buf.AppendUint32(id)
	}
}

func consumeIDList(buf *sshfx.Buffer) ([]uint32, error) {
	b, err := buf.ConsumeByteSlice()
	if err != nil {
		return nil, err
	}

	if len(b)%4 != 0 {
		return nil, sshfx.ErrShortPacket
	}

	list := sshfx.NewBuffer(b)

	ids := make([]uint32, 0, len(b)/4)
	for list.Len() > 0 {
		id, err := list.ConsumeUint32()
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// MarshalInto encodes ep into the binary encoding of the users-groups-by-id@openssh.com extended packet-specific data.
func (ep *UsersGroupsByIDExtendedPacket) MarshalInto(buf *sshfx.Buffer) {
	appendIDList(buf, ep.UIDs)
	appendIDList(buf, ep.GIDs)
}

// MarshalBinary encodes ep into the binary encoding of the users-groups-by-id@openssh.com extended packet-specific data.
//
// NOTE: This _only_ encodes the packet-specific data, it does not encode the full extended packet.
func (ep *UsersGroupsByIDExtendedPacket) MarshalBinary() ([]byte, error) {
	size := 4 + 4*len(ep.UIDs) + 4 + 4*len(ep.GIDs)

	buf := sshfx.NewBuffer(make([]byte, 0, size))
	ep.MarshalInto(buf)
	return buf.Bytes(), nil
}

// UnmarshalFrom decodes the users-groups-by-id@openssh.com extended packet-specific data from buf.
func (ep *UsersGroupsByIDExtendedPacket) UnmarshalFrom(buf *sshfx.Buffer) (err error) {
	if ep.UIDs, err = consumeIDList(buf); err != nil {
		return err
	}

	if ep.GIDs, err = consumeIDList(buf); err != nil {
		return err
	}

	return nil
}

// UnmarshalBinary decodes the users-groups-by-id@openssh.com extended packet-specific data into ep.
func (ep *UsersGroupsByIDExtendedPacket) UnmarshalBinary(data []byte) (err error) {
	return ep.UnmarshalFrom(sshfx.NewBuffer(data))
}

// ShortNamesError is returned when a users-groups-by-id@openssh.com reply
// carries fewer names than ids were asked for.
type ShortNamesError struct {
	Kind string // "user" or "group"
	Want int
	Got  int
}

func (e *ShortNamesError) Error() string {
	return fmt.Sprintf("users-groups-by-id: expected %d %s names, got %d", e.Want, e.Kind, e.Got)
}

// UsersGroupsByIDExtendedReplyPacket defines the extended reply packet for users-groups-by-id@openssh.com.
//
// Names are positional: Usernames[i] names the uid at index i of the request.
// An empty name means the server could not resolve that id.
type UsersGroupsByIDExtendedReplyPacket struct {
	Usernames  []string
	Groupnames []string
}

// Type returns the SSH_FXP_EXTENDED_REPLY packet type.
func (ep *UsersGroupsByIDExtendedReplyPacket) Type() sshfx.PacketType {
	return sshfx.PacketTypeExtendedReply
}

// MarshalPacket returns ep as a two-part binary encoding of the full extended reply packet.
func (ep *UsersGroupsByIDExtendedReplyPacket) MarshalPacket(reqid uint32, b []byte) (header, payload []byte, err error) {
	p := &sshfx.ExtendedReplyPacket{
		Data: ep,
	}
	return p.MarshalPacket(reqid, b)
}

func appendNameList(buf *sshfx.Buffer, names []string) {
	sub := sshfx.NewBuffer(nil)
	for _, name := range names {
		sub.AppendString(name)
	}

	buf.AppendByteSlice(sub.Bytes())
}

func consumeNameList(buf *sshfx.Buffer, kind string, n int) ([]string, error) {
	b, err := buf.ConsumeByteSlice()
	if err != nil {
		return nil, err
	}

	list := sshfx.NewBuffer(b)

	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name, err := list.ConsumeString()
		if err != nil {
			// a list that ends early, cleanly or midway through a name, is short.
			return nil, &ShortNamesError{
				Kind: kind,
				Want: n,
				Got:  i,
			}
		}

		names = append(names, name)
	}

	return names, nil
}

// MarshalInto encodes ep into the binary encoding of the users-groups-by-id@openssh.com extended reply packet-specific data.
func (ep *UsersGroupsByIDExtendedReplyPacket) MarshalInto(buf *sshfx.Buffer) {
	appendNameList(buf, ep.Usernames)
	appendNameList(buf, ep.Groupnames)
}

// MarshalBinary encodes ep into the binary encoding of the users-groups-by-id@openssh.com extended reply packet-specific data.
//
// NOTE: This _only_ encodes the packet-specific data, it does not encode the full extended reply packet.
func (ep *UsersGroupsByIDExtendedReplyPacket) MarshalBinary() ([]byte, error) {
	buf := sshfx.NewBuffer(nil)
	ep.MarshalInto(buf)
	return buf.Bytes(), nil
}

// UnmarshalFrom decodes the users-groups-by-id@openssh.com extended reply packet-specific data from buf.
//
// The reply does not say how many names it carries,
// so the caller passes the number of uids and gids that were requested.
// Extra names within a list are ignored.
// Too few names yields a *ShortNamesError.
func (ep *UsersGroupsByIDExtendedReplyPacket) UnmarshalFrom(buf *sshfx.Buffer, nuids, ngids int) (err error) {
	if ep.Usernames, err = consumeNameList(buf, "user", nuids); err != nil {
		return err
	}

	if ep.Groupnames, err = consumeNameList(buf, "group", ngids); err != nil {
		return err
	}

	return nil
}

// UnmarshalBinary decodes the reply assuming every name in each list was asked for.
func (ep *UsersGroupsByIDExtendedReplyPacket) UnmarshalBinary(data []byte) (err error) {
	buf := sshfx.NewBuffer(data)

	if ep.Usernames, err = consumeAllNames(buf); err != nil {
		return err
	}

	if ep.Groupnames, err = consumeAllNames(buf); err != nil {
		return err
	}

	return nil
}

func consumeAllNames(buf *sshfx.Buffer) ([]string, error) {
	b, err := buf.ConsumeByteSlice()
	if err != nil {
		return nil, err
	}

	list := sshfx.NewBuffer(b)

	var names []string
	for list.Len() > 0 {
		name, err := list.ConsumeString()
		if err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, nil
}
