package backends

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	suffixes := map[ID]string{
		Cpp:    ".grpc.client.pb.cc",
		Go:     ".grpc.client.pb.go",
		Python: ".grpc.client.pb.py",
		Node:   ".grpc.client.pb.js",
	}
	for _, id := range All {
		h, err := New(id)
		require.NoError(t, err)
		assert.Equal(t, string(id), h.Name())
		assert.Equal(t, suffixes[id], h.Suffix())
	}

	_, err := New("ruby")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ruby"`)
}

func TestParse(t *testing.T) {
	ids, err := Parse([]string{"go", "all", "go"})
	require.NoError(t, err)
	assert.Equal(t, []ID{Go, Cpp, Python, Node}, ids)

	_, err = Parse([]string{"go", "cobol"})
	require.Error(t, err)
}
