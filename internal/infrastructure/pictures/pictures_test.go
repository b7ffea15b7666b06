package pictures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadline-app/threadline/internal/domain/entities"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	path := filepath.Join(dir, "portrait.PNG")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	pic, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "portrait.PNG", pic.Name)
	assert.Equal(t, "image/png", pic.MediaType, "extension match is case-insensitive")
	assert.Equal(t, len(raw), pic.Size)

	decoded, err := Decode(pic)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestLoad_UnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.dat")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	pic, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", pic.MediaType)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestDecode_InvalidData(t *testing.T) {
	_, err := Decode(entities.Picture{Data: "not base64!!"})
	assert.Error(t, err)
}
