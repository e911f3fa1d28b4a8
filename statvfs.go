package sftpext

import (
	"context"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
	"github.com/sftpext/sftpext/encoding/ssh/filexfer/openssh"
)

// ExtensionStatVFS is the name the server advertises for statvfs support.
var ExtensionStatVFS = openssh.ExtensionStatVFS().Name

// A StatVFS contains statistics about a filesystem.
type StatVFS struct {
	Bsize   uint64 /* file system block size */
	Frsize  uint64 /* fundamental fs block size */
	Blocks  uint64 /* number of blocks (unit f_frsize) */
	Bfree   uint64 /* free blocks in file system */
	Bavail  uint64 /* free blocks for non-root */
	Files   uint64 /* total file inodes */
	Ffree   uint64 /* free file inodes */
	Favail  uint64 /* free file inodes for to non-root */
	Fsid    uint64 /* file system id */
	Flag    uint64 /* bit mask of f_flag values */
	Namemax uint64 /* maximum filename length */
}

// TotalSpace calculates the amount of total space in a filesystem.
func (p *StatVFS) TotalSpace() uint64 {
	return p.Frsize * p.Blocks
}

// FreeSpace calculates the amount of free space in a filesystem.
func (p *StatVFS) FreeSpace() uint64 {
	return p.Frsize * p.Bfree
}

// AvailableSpace calculates the amount of space available to a non-root user.
func (p *StatVFS) AvailableSpace() uint64 {
	return p.Frsize * p.Bavail
}

// Map returns the eleven fields keyed by their statvfs(3) names, without the f_ prefix.
func (p *StatVFS) Map() map[string]uint64 {
	return map[string]uint64{
		"bsize":   p.Bsize,
		"frsize":  p.Frsize,
		"blocks":  p.Blocks,
		"bfree":   p.Bfree,
		"bavail":  p.Bavail,
		"files":   p.Files,
		"ffree":   p.Ffree,
		"favail":  p.Favail,
		"fsid":    p.Fsid,
		"flag":    p.Flag,
		"namemax": p.Namemax,
	}
}

// StatVFSKeys lists the keys of StatVFS.Map in wire order.
var StatVFSKeys = []string{"bsize", "frsize", "blocks", "bfree", "bavail", "files", "ffree", "favail", "fsid", "flag", "namemax"}

// StatVFS retrieves statistics about the filesystem holding path.
// It requires the statvfs@openssh.com extension.
func (cl *Client) StatVFS(path string) (*StatVFS, error) {
	return cl.StatVFSContext(context.Background(), path)
}

// StatVFSContext is StatVFS with a context.
//
// Only an SSH_FXP_EXTENDED_REPLY is accepted,
// a server reporting failure with SSH_FXP_STATUS yields a *ReplyStatusError.
func (cl *Client) StatVFSContext(ctx context.Context, path string) (*StatVFS, error) {
	cl.Logger().Debug("statvfs", "path", path)

	var resp openssh.StatVFSExtendedReplyPacket

	err := cl.call(ctx, ExtensionStatVFS, &openssh.StatVFSExtendedPacket{Path: path}, acceptExtendedReply, func(raw *sshfx.RawPacket) error {
		return resp.UnmarshalFrom(&raw.Data)
	})
	if err != nil {
		return nil, err
	}

	return &StatVFS{
		Bsize:   resp.BlockSize,
		Frsize:  resp.FragmentSize,
		Blocks:  resp.Blocks,
		Bfree:   resp.BlocksFree,
		Bavail:  resp.BlocksAvail,
		Files:   resp.Files,
		Ffree:   resp.FilesFree,
		Favail:  resp.FilesAvail,
		Fsid:    resp.FilesystemID,
		Flag:    resp.MountFlags,
		Namemax: resp.MaxNameLength,
	}, nil
}
