package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdymind/buckindex/internal/config"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "workload.cfg")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

func Test_LoadWorkload_Parses_Recognized_Keys(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "g_data_path /tmp/data.txt\ng_bulk_load true\ng_read_ratio 0.9\n")

	w, err := config.LoadWorkload(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/data.txt", w.DataPath)
	assert.True(t, w.BulkLoad)
	assert.Equal(t, 0.9, w.ReadRatio)
}

func Test_LoadWorkload_Ignores_Blank_Lines_And_Comments(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "# a comment\n\ng_bulk_load false # trailing comment\n")

	w, err := config.LoadWorkload(path)
	require.NoError(t, err)
	assert.False(t, w.BulkLoad)
}

func Test_LoadWorkload_Unknown_Key_Is_An_Error(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "g_unknown_key 1\n")

	_, err := config.LoadWorkload(path)
	assert.Error(t, err)
}

func Test_LoadWorkload_Malformed_Line_Is_An_Error(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "g_bulk_load\n")

	_, err := config.LoadWorkload(path)
	assert.Error(t, err)
}

func Test_LoadWorkload_Missing_File_Is_An_Error(t *testing.T) {
	t.Parallel()

	_, err := config.LoadWorkload(filepath.Join(t.TempDir(), "missing.cfg"))
	assert.Error(t, err)
}

func Test_LoadWorkload_Invalid_Bool_Value_Is_An_Error(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "g_bulk_load maybe\n")

	_, err := config.LoadWorkload(path)
	assert.Error(t, err)
}
