// Package uploads stores resized store photos.
package uploads

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Width is the width every stored photo is resized to.
const Width = 800

// RejectedError reports an upload that is not a supported image.
type RejectedError struct {
	MimeType string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("That filetype isn't allowed! (%s)", e.MimeType)
}

// Processor resizes uploaded photos and writes them to a filesystem.
type Processor struct {
	fs afero.Fs
}

// NewProcessor creates a Processor writing into dir on the OS filesystem.
func NewProcessor(dir string) (*Processor, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return NewProcessorFs(afero.NewBasePathFs(osFs, dir)), nil
}

// NewProcessorFs creates a Processor writing to the root of fs.
func NewProcessorFs(fs afero.Fs) *Processor {
	return &Processor{fs: fs}
}

// Process stores the uploaded image and returns its file name. A nil or empty
// upload is not an error and returns "".
func (p *Processor) Process(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Size == 0 {
		return "", nil
	}

	mimeType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		return "", &RejectedError{MimeType: mimeType}
	}
	ext := strings.TrimPrefix(mimeType, "image/")
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return "", &RejectedError{MimeType: mimeType}
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode %s upload: %w", ext, err)
	}
	img = imaging.Resize(img, Width, 0, imaging.Lanczos)

	name := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	dst, err := p.fs.Create(name)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := imaging.Encode(dst, img, format); err != nil {
		dst.Close()
		_ = p.fs.Remove(name)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	return name, nil
}

// Remove deletes a stored photo. An empty name is a no-op.
func (p *Processor) Remove(name string) error {
	if name == "" {
		return nil
	}
	if err := p.fs.Remove(name); err != nil {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}
