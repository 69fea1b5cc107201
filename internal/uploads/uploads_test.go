package uploads_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"regexp"
	"testing"

	"storedir/internal/uploads"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a parsed multipart upload named photo.
func fileHeader(t *testing.T, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="photo"; filename="upload"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["photo"][0]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcess_ResizesToWidth(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := uploads.NewProcessorFs(fs)

	name, err := p.Process(fileHeader(t, "image/png", pngBytes(t, 400, 200)))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}\.png$`), name)

	f, err := fs.Open(name)
	require.NoError(t, err)
	defer f.Close()
	img, err := imaging.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestProcess_RejectsNonImages(t *testing.T) {
	p := uploads.NewProcessorFs(afero.NewMemMapFs())

	_, err := p.Process(fileHeader(t, "application/pdf", []byte("%PDF-1.4")))
	var rejected *uploads.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "application/pdf", rejected.MimeType)

	_, err = p.Process(fileHeader(t, "image/svg+xml", []byte("<svg/>")))
	assert.True(t, errors.As(err, &rejected))
}

func TestProcess_NoUpload(t *testing.T) {
	p := uploads.NewProcessorFs(afero.NewMemMapFs())
	name, err := p.Process(nil)
	assert.NoError(t, err)
	assert.Empty(t, name)
}

func TestProcess_CorruptImage(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := uploads.NewProcessorFs(fs)

	_, err := p.Process(fileHeader(t, "image/png", []byte("not really a png")))
	assert.Error(t, err)
	var rejected *uploads.RejectedError
	assert.False(t, errors.As(err, &rejected))

	entries, err := afero.ReadDir(fs, "/")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemove(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := uploads.NewProcessorFs(fs)

	name, err := p.Process(fileHeader(t, "image/png", pngBytes(t, 100, 50)))
	require.NoError(t, err)
	require.NoError(t, p.Remove(name))

	exists, err := afero.Exists(fs, name)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, p.Remove(""))
	assert.Error(t, p.Remove("missing.png"))
}
