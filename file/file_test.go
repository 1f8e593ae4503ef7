package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CK6170/densevec-go/models"
)

func TestSaveLoadVectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.json")
	vf := &VectorFile{
		TOLERANCE: 1e-6,
		VECTORS: map[string][]float64{
			"a": {1, 2, 3},
			"b": {10, 20, 30},
		},
	}
	require.NoError(t, SaveVectors(path, vf))

	got, err := LoadVectors(path)
	require.NoError(t, err)
	assert.Equal(t, vf, got)
	assert.Equal(t, []string{"a", "b"}, Names(got))

	values, err := Lookup(got, "b")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, values)
}

func TestLoadVectorsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadVectors(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, models.FILE_NOT_FOUND))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = LoadVectors(bad)
	assert.True(t, errors.Is(err, models.IO_ERROR))

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"TOLERANCE":0.5}`), 0644))
	vf, err := LoadVectors(empty)
	require.NoError(t, err)
	assert.NotNil(t, vf.VECTORS)
	assert.Empty(t, Names(vf))
}

func TestLookupErrors(t *testing.T) {
	_, err := Lookup(&VectorFile{VECTORS: map[string][]float64{}}, "x")
	assert.True(t, errors.Is(err, models.VECTOR_NOT_FOUND))

	_, err = Lookup(nil, "x")
	assert.True(t, errors.Is(err, models.NULLPTR_ERROR))
	assert.Nil(t, Names(nil))
}

func TestOpenLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vector.log")

	require.NoError(t, AppendToFile(path, "first"))
	require.NoError(t, AppendToFile(path, "second"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))

	f, err := OpenLog(path, true)
	require.NoError(t, err)
	_, err = f.WriteString("fresh\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(data))
}
