package tilasto

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func Test_FileWriter_WriteDataset(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "data")
	w, err := NewFileWriter(dir)
	require.NoError(t, err)

	err = w.WriteDataset("example", map[string]interface{}{"answer": 42})
	require.NoError(t, err)

	body, err := os.ReadFile(filepath.Join(dir, "example.json"))
	require.NoError(t, err)

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Equal(t, 42, decoded["answer"])
}

func Test_FileWriter_Stamp(t *testing.T) {
	t.Parallel()

	w, err := NewFileWriter(t.TempDir())
	require.NoError(t, err)
	require.NotEmpty(t, w.RunID())

	meta := w.Stamp("Statistics Finland", "some/table.px", "test dataset")
	require.Equal(t, "Statistics Finland", meta.Source)
	require.Equal(t, "some/table.px", meta.TableID)
	require.Equal(t, "test dataset", meta.Description)
	require.Equal(t, w.RunID(), meta.RunID)
	require.False(t, meta.FetchedAt.IsZero())

	// Every dataset of one run carries the same identifier.
	require.Equal(t, meta.RunID, w.Stamp("x", "y", "z").RunID)
}
