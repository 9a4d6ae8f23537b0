package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/docprep/pkg/errs"
)

// writeZip builds a zip file at path from a name->content map.
func writeZip(t *testing.T, path string, members map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range members {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func zipBytes(t *testing.T, members map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range members {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestFindArchive(t *testing.T) {
	t.Run("single zip", func(t *testing.T) {
		dir := t.TempDir()
		want := filepath.Join(dir, "Досье по банкротству А33-12345_2024.zip")
		writeZip(t, want, map[string][]byte{"a.txt": []byte("a")})

		got, err := FindArchive(dir)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("rar extension accepted", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Досье по банкротству.rar"), []byte("Rar!"), 0o644))
		_, err := FindArchive(dir)
		assert.NoError(t, err)
	})

	t.Run("none", func(t *testing.T) {
		_, err := FindArchive(t.TempDir())
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})

	t.Run("several", func(t *testing.T) {
		dir := t.TempDir()
		writeZip(t, filepath.Join(dir, "Досье по банкротству 1.zip"), map[string][]byte{"a": nil})
		writeZip(t, filepath.Join(dir, "Досье по банкротству 2.zip"), map[string][]byte{"a": nil})
		_, err := FindArchive(dir)
		assert.True(t, errors.Is(err, errs.ErrAmbiguousMatch))
	})

	t.Run("other extensions excluded", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Досье по банкротству.7z"), []byte("x"), 0o644))
		_, err := FindArchive(dir)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	arc := filepath.Join(dir, "Досье по банкротству.zip")
	writeZip(t, arc, map[string][]byte{
		"Обязательство 1/справка.pdf": []byte("pdf"),
		"опись.txt":                   []byte("список"),
	})

	dest, err := Extract(arc, filepath.Join(dir, "Иванов И.И."))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "Обязательство 1", "справка.pdf"))
	assert.FileExists(t, filepath.Join(dest, "опись.txt"))

	t.Run("idempotent on non-empty destination", func(t *testing.T) {
		_, err := Extract(arc, dest)
		assert.NoError(t, err)
	})

	t.Run("missing archive", func(t *testing.T) {
		_, err := Extract(filepath.Join(dir, "нет.zip"), dir)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})

	t.Run("unsupported format", func(t *testing.T) {
		bad := filepath.Join(dir, "архив.tar")
		require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
		_, err := Extract(bad, filepath.Join(dir, "out"))
		assert.Error(t, err)
	})
}

func TestExtractRejectsEscapingMembers(t *testing.T) {
	dir := t.TempDir()
	arc := filepath.Join(dir, "Досье по банкротству.zip")
	writeZip(t, arc, map[string][]byte{"../укравший.txt": []byte("x")})

	_, err := Extract(arc, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "укравший.txt"))
}

func TestExtractNested(t *testing.T) {
	dir := t.TempDir()

	inner := zipBytes(t, map[string][]byte{"глубже/договор.pdf": []byte("pdf")})
	arc := filepath.Join(dir, "Досье по банкротству.zip")
	writeZip(t, arc, map[string][]byte{
		"Обязательство 1/вложение.zip": inner,
		"опись.txt":                    []byte("список"),
	})

	dossier, err := Extract(arc, filepath.Join(dir, "Иванов И.И."))
	require.NoError(t, err)
	require.NoError(t, ExtractNested(dossier))

	// The nested archive is extracted beside itself and not deleted.
	assert.FileExists(t, filepath.Join(dossier, "Обязательство 1", "вложение.zip"))
	assert.FileExists(t, filepath.Join(dossier, "Обязательство 1", "вложение", "глубже", "договор.pdf"))
}

func TestExtractNestedTerminatesOnSelfReproducingArchive(t *testing.T) {
	// An archive whose extraction yields a byte-identical copy of itself
	// must not loop: each cleaned path is processed once, and the copy
	// extracts into its own sibling folder one level down.
	dir := t.TempDir()
	self := zipBytes(t, map[string][]byte{"копия.zip": zipBytes(t, map[string][]byte{"файл.txt": []byte("x")})})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "архив.zip"), self, 0o644))

	require.NoError(t, ExtractNested(dir))
	assert.FileExists(t, filepath.Join(dir, "архив", "копия", "файл.txt"))
}
