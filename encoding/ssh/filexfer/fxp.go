package filexfer

import (
	"fmt"
)

// PacketType defines the various SFTP packet types.
type PacketType uint8

// Request packet types.
const (
	PacketTypeInit = PacketType(iota + 1)
	PacketTypeVersion
	PacketTypeOpen
	PacketTypeClose
	PacketTypeRead
	PacketTypeWrite
	PacketTypeLStat
	PacketTypeFStat
	PacketTypeSetstat
	PacketTypeFSetstat
	PacketTypeOpenDir
	PacketTypeReadDir
	PacketTypeRemove
	PacketTypeMkdir
	PacketTypeRmdir
	PacketTypeRealPath
	PacketTypeStat
	PacketTypeRename
	PacketTypeReadLink
	PacketTypeSymlink
)

// Response packet types.
const (
	PacketTypeStatus = PacketType(iota + 101)
	PacketTypeHandle
	PacketTypeData
	PacketTypeName
	PacketTypeAttrs
)

// Extended packet types.
const (
	PacketTypeExtended = PacketType(iota + 200)
	PacketTypeExtendedReply
)

var packetTypeNames = map[PacketType]string{
	PacketTypeInit:          "SSH_FXP_INIT",
	PacketTypeVersion:       "SSH_FXP_VERSION",
	PacketTypeOpen:          "SSH_FXP_OPEN",
	PacketTypeClose:         "SSH_FXP_CLOSE",
	PacketTypeRead:          "SSH_FXP_READ",
	PacketTypeWrite:         "SSH_FXP_WRITE",
	PacketTypeLStat:         "SSH_FXP_LSTAT",
	PacketTypeFStat:         "SSH_FXP_FSTAT",
	PacketTypeSetstat:       "SSH_FXP_SETSTAT",
	PacketTypeFSetstat:      "SSH_FXP_FSETSTAT",
	PacketTypeOpenDir:       "SSH_FXP_OPENDIR",
	PacketTypeReadDir:       "SSH_FXP_READDIR",
	PacketTypeRemove:        "SSH_FXP_REMOVE",
	PacketTypeMkdir:         "SSH_FXP_MKDIR",
	PacketTypeRmdir:         "SSH_FXP_RMDIR",
	PacketTypeRealPath:      "SSH_FXP_REALPATH",
	PacketTypeStat:          "SSH_FXP_STAT",
	PacketTypeRename:        "SSH_FXP_RENAME",
	PacketTypeReadLink:      "SSH_FXP_READLINK",
	PacketTypeSymlink:       "SSH_FXP_SYMLINK",
	PacketTypeStatus:        "SSH_FXP_STATUS",
	PacketTypeHandle:        "SSH_FXP_HANDLE",
	PacketTypeData:          "SSH_FXP_DATA",
	PacketTypeName:          "SSH_FXP_NAME",
	PacketTypeAttrs:         "SSH_FXP_ATTRS",
	PacketTypeExtended:      "SSH_FXP_EXTENDED",
	PacketTypeExtendedReply: "SSH_FXP_EXTENDED_REPLY",
}

func (f PacketType) String() string {
	if name, ok := packetTypeNames[f]; ok {
		return name
	}

	return fmt.Sprintf("SSH_FXP_UNKNOWN(%d)", f)
}
