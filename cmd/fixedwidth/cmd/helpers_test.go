package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssargent/fixedwidth/pkg/codec"
)

const membersSpec = `recordEnding: "\n"
fields:
  - key: id
    type: integer
    startingPosition: 1
    length: 5
    required: true
  - key: name
    type: string
    startingPosition: 6
    length: 8
  - key: tier
    type: string
    startingPosition: 14
    length: 1
    possibleValues: [A, B]
    defaultValue: B
`

func writeSpec(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func membersLayout(t *testing.T) *codec.Layout {
	t.Helper()
	layout, err := codec.LoadLayout(writeSpec(t, t.TempDir(), "members.yaml", membersSpec))
	require.NoError(t, err)
	return layout
}
