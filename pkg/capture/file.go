package capture

import (
	"context"
	"errors"
	"os"
)

// Picker lets the user choose an image file. An empty path means the user
// dismissed the picker.
type Picker func(ctx context.Context) (string, error)

// FileSource is the media library source.
type FileSource struct {
	pick Picker
}

// NewFileSource creates a library source using pick.
func NewFileSource(pick Picker) *FileSource {
	return &FileSource{pick: pick}
}

// FromPath returns a library source that always selects path.
func FromPath(path string) *FileSource {
	return NewFileSource(func(context.Context) (string, error) { return path, nil })
}

// Capture asks the picker for a file and reads it.
func (s *FileSource) Capture(ctx context.Context) (*Image, error) {
	path, err := s.pick(ctx)
	if err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, ErrPermissionDenied) {
			return nil, err
		}
		if errors.Is(err, os.ErrPermission) {
			return nil, ErrPermissionDenied
		}
		return nil, failed(OriginLibrary, "picker failed", err)
	}
	if path == "" {
		return nil, ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrPermission):
		return nil, ErrPermissionDenied
	case err != nil:
		return nil, failed(OriginLibrary, "read "+path, err)
	}

	return NewImage(data, Locator(path), OriginLibrary)
}

// BytesSource wraps image bytes that were already received, e.g. an upload.
type BytesSource struct {
	data  []byte
	name  string
	store *Store
}

// NewBytesSource creates a library source for data. When store is non-nil the
// bytes are persisted so the locator is a file.
func NewBytesSource(data []byte, name string, store *Store) *BytesSource {
	return &BytesSource{data: data, name: name, store: store}
}

// Capture validates and returns the wrapped bytes.
func (s *BytesSource) Capture(ctx context.Context) (*Image, error) {
	if len(s.data) == 0 {
		return nil, failed(OriginLibrary, "no image data", nil)
	}

	locator := "upload://" + s.name
	if s.store != nil {
		img, err := NewImage(s.data, locator, OriginLibrary)
		if err != nil {
			return nil, err
		}
		loc, err := s.store.Save(s.data, extFor(img.MIMEType))
		if err != nil {
			return nil, failed(OriginLibrary, "store upload", err)
		}
		img.Locator = loc
		return img, nil
	}
	return NewImage(s.data, locator, OriginLibrary)
}

func extFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
