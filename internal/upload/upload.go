// Package upload validates and stores media files below the upload directory.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"aufgussplan/internal/logger"
	"aufgussplan/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxSize is the largest accepted file.
const MaxSize = 50 << 20

var (
	ErrTooLarge    = errors.New("Datei ist zu gross (max. 50MB)")
	ErrInvalidType = errors.New("Ungueltiger Dateityp")
	ErrInvalidPath = errors.New("invalid media path")
)

var allowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"video/mp4",
	"video/webm",
	"video/ogg",
	"audio/ogg",
	"application/ogg",
}

// Stored describes a file written by Save. Path is relative to the upload dir.
type Stored struct {
	Path string
	Type string
	Name string
	MIME string
}

type Store struct {
	Dir    string
	Logger *logger.Logger
	NewID  func() string
}

func NewStore(dir string, log *logger.Logger) *Store {
	return &Store{
		Dir:    dir,
		Logger: log,
		NewID:  func() string { return uuid.New().String() },
	}
}

// Save sniffs the file content against the allow-list and writes it to
// <dir>/<subdir>/<id>_<name>.
func (s *Store) Save(fh *multipart.FileHeader, subdir string) (*Stored, error) {
	if fh.Size > MaxSize {
		return nil, ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("detect upload type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		s.Logger.LogSecurity("UPLOAD_REJECTED", fmt.Sprintf("%s detected as %s", fh.Filename, mtype.String()))
		return nil, ErrInvalidType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	name := s.NewID() + "_" + cleanName(fh.Filename)
	dir := filepath.Join(s.Dir, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(src, MaxSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > MaxSize {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(dst.Name())
		return nil, err
	}

	stored := &Stored{
		Path: path.Join(subdir, name),
		Type: MediaType(mtype.String()),
		Name: fh.Filename,
		MIME: mtype.String(),
	}
	s.Logger.Info("UPLOAD", fmt.Sprintf("Stored %s (%s, %d bytes)", stored.Path, stored.MIME, written))
	return stored, nil
}

// Remove deletes a previously stored file. Missing files are not an error.
func (s *Store) Remove(rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) resolve(rel string) (string, error) {
	rel = strings.TrimLeft(strings.TrimSpace(rel), "/")
	if rel == "" || strings.Contains(rel, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.Dir, filepath.FromSlash(rel)), nil
}

// MediaType maps a MIME type to the image/video distinction the display uses.
func MediaType(mime string) string {
	if strings.HasPrefix(mime, "video/") || strings.HasSuffix(mime, "/ogg") {
		return models.MediaTypeVideo
	}
	return models.MediaTypeImage
}

// TypeFromExtension guesses image or video from a stored path.
func TypeFromExtension(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".mp4", ".webm", ".ogg", ".ogv":
		return models.MediaTypeVideo
	}
	return models.MediaTypeImage
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == "_" {
		return "datei"
	}
	return name
}
