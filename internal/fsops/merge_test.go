package fsops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeObligationContents(t *testing.T) {
	t.Run("tags appended when missing", func(t *testing.T) {
		dir := t.TempDir()
		src1 := filepath.Join(dir, "Обязательство № 1 от 01.01.2024")
		src2 := filepath.Join(dir, "Обязательство № 2 от 02.02.2024")
		touch(t, filepath.Join(src1, "справка.pdf"))
		touch(t, filepath.Join(src2, "справка.pdf"))
		dest := filepath.Join(dir, "арбитр")

		require.NoError(t, MergeObligationContents(src1, dest, "1"))
		require.NoError(t, MergeObligationContents(src2, dest, "2"))

		assert.FileExists(t, filepath.Join(dest, "справка_1.pdf"))
		assert.FileExists(t, filepath.Join(dest, "справка_2.pdf"))
	})

	t.Run("name already carrying tag is kept", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "Обязательство № 7 от 01.01.2024")
		touch(t, filepath.Join(src, "договор_7.pdf"))
		dest := filepath.Join(dir, "арбитр")

		require.NoError(t, MergeObligationContents(src, dest, "7"))
		assert.FileExists(t, filepath.Join(dest, "договор_7.pdf"))
	})

	t.Run("collision after tagging gets numeric suffix", func(t *testing.T) {
		dir := t.TempDir()
		src1 := filepath.Join(dir, "a")
		src2 := filepath.Join(dir, "b")
		touch(t, filepath.Join(src1, "справка.pdf"))
		touch(t, filepath.Join(src2, "справка.pdf"))
		dest := filepath.Join(dir, "арбитр")

		require.NoError(t, MergeObligationContents(src1, dest, "3"))
		require.NoError(t, MergeObligationContents(src2, dest, "3"))

		assert.FileExists(t, filepath.Join(dest, "справка_3.pdf"))
		assert.FileExists(t, filepath.Join(dest, "справка_3_1.pdf"))
	})

	t.Run("subfolders are flattened", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "Обязательство № 4 от 01.01.2024")
		touch(t, filepath.Join(src, "вложено", "выписка.pdf"))
		dest := filepath.Join(dir, "арбитр")

		require.NoError(t, MergeObligationContents(src, dest, "4"))
		assert.FileExists(t, filepath.Join(dest, "выписка_4.pdf"))
		assert.NoDirExists(t, filepath.Join(dest, "вложено"))
	})

	t.Run("empty tag copies names unchanged", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "Справки")
		touch(t, filepath.Join(src, "паспорт.pdf"))
		dest := filepath.Join(dir, "арбитр")

		require.NoError(t, MergeObligationContents(src, dest, ""))
		assert.FileExists(t, filepath.Join(dest, "паспорт.pdf"))
	})
}

func TestMergeCreatesDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "s")
	require.NoError(t, os.Mkdir(src, 0o755))
	dest := filepath.Join(dir, "нет", "пока")

	require.NoError(t, MergeObligationContents(src, dest, "1"))
	assert.DirExists(t, dest)
}
