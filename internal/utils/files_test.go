package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

func TestSafeWriteFileCreatesParent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "dir", "out.json")
	require.NoError(t, utils.SafeWriteFile(p, []byte(`{"a":1}`)))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file left behind: %v", err)
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(b))
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, filepath.Join("/home/tester", "data", "x.json"), utils.ExpandHome("~/data/x.json"))
	assert.Equal(t, "/abs/~/x", utils.ExpandHome("/abs/~/x"))
}
