package commands

import (
	"encoding/json"
	"strconv"

	sshfx "github.com/sftpext/sftpext/encoding/ssh/filexfer"
)

type extensionRow struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

type extensionList []extensionRow

func newExtensionList(exts []sshfx.ExtensionPair) extensionList {
	list := make(extensionList, 0, len(exts))
	for _, ext := range exts {
		list = append(list, extensionRow{Name: ext.Name, Version: ext.Data})
	}
	return list
}

func (l extensionList) Headers() []string { return []string{"NAME", "VERSION"} }

func (l extensionList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, ext := range l {
		rows = append(rows, []string{ext.Name, ext.Version})
	}
	return rows
}

// fieldList is a set of named counters printed in a fixed order.
type fieldList struct {
	keys   []string
	values map[string]uint64
}

func (f fieldList) Headers() []string { return []string{"FIELD", "VALUE"} }

func (f fieldList) Rows() [][]string {
	rows := make([][]string, 0, len(f.keys))
	for _, k := range f.keys {
		rows = append(rows, []string{k, strconv.FormatUint(f.values[k], 10)})
	}
	return rows
}

func (f fieldList) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.values)
}

func (f fieldList) MarshalYAML() (any, error) {
	return f.values, nil
}

type pathResult struct {
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
	Found bool   `json:"found" yaml:"found"`
}

func (r pathResult) Headers() []string { return []string{"PATH"} }

func (r pathResult) Rows() [][]string {
	if !r.Found {
		return nil
	}
	return [][]string{{r.Path}}
}

type idName struct {
	ID   uint32 `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type idResult struct {
	Users  []idName `json:"users" yaml:"users"`
	Groups []idName `json:"groups" yaml:"groups"`
}

func newIDNames(ids []uint32, names []string) []idName {
	out := make([]idName, 0, len(ids))
	for i, id := range ids {
		out = append(out, idName{ID: id, Name: names[i]})
	}
	return out
}

func (r idResult) Headers() []string { return []string{"KIND", "ID", "NAME"} }

func (r idResult) Rows() [][]string {
	var rows [][]string
	for _, u := range r.Users {
		rows = append(rows, []string{"user", strconv.FormatUint(uint64(u.ID), 10), u.Name})
	}
	for _, g := range r.Groups {
		rows = append(rows, []string{"group", strconv.FormatUint(uint64(g.ID), 10), g.Name})
	}
	return rows
}
