package editor

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/docprep/internal/docx"
)

func writeSignaturePNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.Black)
	}
	path := filepath.Join(t.TempDir(), "signa.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestInsertSignature(t *testing.T) {
	d := buildDoc("текст заявления", "Финансовый управляющий")
	path := writeSignaturePNG(t, 200, 100)

	require.NoError(t, InsertSignature(d, path))

	last := d.LastParagraph()
	require.NotNil(t, last.Image)
	assert.Equal(t, "center", last.Alignment)
	assert.True(t, d.HasSignature())

	// Fixed 3 cm width, height follows the source aspect ratio.
	assert.Equal(t, int64(1080000), last.Image.WidthEMU)
	assert.Equal(t, int64(540000), last.Image.HeightEMU)
}

func TestInsertSignatureIdempotent(t *testing.T) {
	d := buildDoc("единственный абзац")
	path := writeSignaturePNG(t, 100, 100)

	require.NoError(t, InsertSignature(d, path))
	first := d.LastParagraph().Image
	require.NoError(t, InsertSignature(d, path))
	assert.Same(t, first, d.LastParagraph().Image)
}

func TestInsertSignatureMissingImage(t *testing.T) {
	d := buildDoc("абзац")
	err := InsertSignature(d, filepath.Join(t.TempDir(), "нет.png"))
	require.Error(t, err)
	assert.Nil(t, d.LastParagraph().Image)
}

func TestInsertSignatureSurvivesRoundTrip(t *testing.T) {
	d := buildDoc("подпись ниже")
	require.NoError(t, InsertSignature(d, writeSignaturePNG(t, 50, 50)))

	out := filepath.Join(t.TempDir(), "signed.docx")
	require.NoError(t, d.Save(out))

	reopened, err := docx.Open(out)
	require.NoError(t, err)
	assert.True(t, reopened.HasSignature())

	// Re-inserting into the reopened document changes nothing.
	require.NoError(t, InsertSignature(reopened, writeSignaturePNG(t, 50, 50)))
	assert.Nil(t, reopened.LastParagraph().Image)
}
