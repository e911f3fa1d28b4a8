package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pairs [][2]string

func (p pairs) Headers() []string { return []string{"NAME", "VERSION"} }

func (p pairs) Rows() [][]string {
	rows := make([][]string, 0, len(p))
	for _, pair := range p {
		rows = append(rows, []string{pair[0], pair[1]})
	}
	return rows
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "table", want: FormatTable},
		{input: "", want: FormatTable},
		{input: "JSON", want: FormatJSON},
		{input: "yml", want: FormatYAML},
		{input: " yaml ", want: FormatYAML},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf, FormatTable)
	require.NoError(t, p.Print(pairs{{"statvfs@openssh.com", "2"}}))

	assert.Contains(t, buf.String(), "NAME")
	assert.Contains(t, buf.String(), "statvfs@openssh.com")
}

func TestPrintTableFallback(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf, FormatTable)
	require.NoError(t, p.Print(map[string]int{"a": 1}))

	assert.JSONEq(t, `{"a": 1}`, buf.String())
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf, FormatYAML)
	require.NoError(t, p.Print(map[string]int{"a": 1}))

	assert.Equal(t, "a: 1\n", buf.String())
}
