package sftpext

import (
	"context"
	"strings"

	"github.com/sftpext/sftpext/encoding/ssh/filexfer/openssh"
)

// ExtensionExpandPath is the name the server advertises for expand-path support.
var ExtensionExpandPath = openssh.ExtensionExpandPath().Name

// AdjustPolicy decides whether ExpandPath rewrites a path against the emulated working directory.
type AdjustPolicy int

// Adjust policies.
const (
	// AdjustAuto rewrites the path unless it starts with "~".
	AdjustAuto AdjustPolicy = iota

	// AdjustForce always rewrites the path.
	AdjustForce

	// AdjustSkip sends the path as given.
	AdjustSkip
)

func (p AdjustPolicy) String() string {
	switch p {
	case AdjustAuto:
		return "auto"
	case AdjustForce:
		return "force"
	case AdjustSkip:
		return "skip"
	}

	return "unknown"
}

// ParseAdjustPolicy parses the names returned by AdjustPolicy.String.
func ParseAdjustPolicy(s string) (AdjustPolicy, bool) {
	switch s {
	case "auto", "":
		return AdjustAuto, true
	case "force":
		return AdjustForce, true
	case "skip":
		return AdjustSkip, true
	}

	return AdjustAuto, false
}

// Chdir sets the emulated working directory used to rewrite relative paths.
// Nothing is sent to the server, and dir is not checked.
// An empty dir unsets the working directory.
func (cl *Client) Chdir(dir string) {
	cl.state.Lock()
	defer cl.state.Unlock()

	cl.cwd = dir
}

// Getwd returns the emulated working directory, empty if unset.
func (cl *Client) Getwd() string {
	cl.state.RLock()
	defer cl.state.RUnlock()

	return cl.cwd
}

// adjustPath joins a relative path onto the working directory.
// Absolute paths, and any path while no working directory is set, are returned as is.
func (cl *Client) adjustPath(path string) string {
	cwd := cl.Getwd()

	switch {
	case cwd == "":
		return path
	case strings.HasPrefix(path, "/"):
		return path
	case cwd == "/":
		return cwd + path
	}

	return cwd + "/" + path
}

// ExpandPath asks the server to canonicalize path, expanding a leading "~" or "~user".
// The path is first rewritten against the emulated working directory according to policy.
// The bool is false when the server returned no path.
// It requires the expand-path@openssh.com extension.
func (cl *Client) ExpandPath(path string, policy AdjustPolicy) (string, bool, error) {
	return cl.ExpandPathContext(context.Background(), path, policy)
}

// ExpandPathContext is ExpandPath with a context.
func (cl *Client) ExpandPathContext(ctx context.Context, path string, policy AdjustPolicy) (string, bool, error) {
	if policy == AdjustForce || (policy == AdjustAuto && !strings.HasPrefix(path, "~")) {
		path = cl.adjustPath(path)
	}

	cl.Logger().Debug("expand-path", "path", path, "adjust", policy)

	return cl.callPath(ctx, ExtensionExpandPath, &openssh.ExpandPathExtendedPacket{Path: path})
}
