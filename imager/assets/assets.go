// Package assets persists downloaded images on the local file system
package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // Decoders
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bakape/forum/config"
	"golang.org/x/image/draw"
)

const (
	fileCreationFlags = os.O_WRONLY | os.O_CREATE

	// Maximum accepted source image size
	maxSourceSize = 8 << 20
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// StorageError is returned on failure to persist an image
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("image store: %s %s: %s", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Store writes images into per-container directories under Dir and serves
// them under the Root URL prefix. Implements common.ImageStore.
type Store struct {
	Dir  string
	Root string
}

// New creates a store from the instance configuration
func New() *Store {
	return &Store{
		Dir:  config.Server.ImageDir,
		Root: config.Server.ImageRoot,
	}
}

// Store reads an image from r and writes it as name into container. Images
// larger than maxDimension on any side are downscaled to PNG. Data, that can
// not be decoded, is stored as is. Returns the public path of the file.
func (s *Store) Store(ctx context.Context, container, name string, r io.Reader,
	maxDimension int, overwrite bool,
) (string, error) {
	container = sanitize(container)
	name = sanitize(name)
	if container == "" || name == "" {
		return "", &StorageError{"validate", container + "/" + name,
			fmt.Errorf("invalid file name")}
	}

	buf, err := io.ReadAll(io.LimitReader(r, maxSourceSize))
	if err != nil {
		return "", &StorageError{"read", name, err}
	}
	data, ext, err := thumbnail(buf, maxDimension)
	if err != nil {
		return "", &StorageError{"scale", name, err}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	file := name + ext
	path := filepath.Join(s.Dir, container, file)
	err = writeFile(path, data, overwrite)
	if err != nil {
		return "", &StorageError{"write", path, err}
	}
	return s.Root + "/" + container + "/" + file, nil
}

// Replace path separators and other unsafe characters
func sanitize(s string) string {
	s = unsafeChars.ReplaceAllString(s, "_")
	if s == "." || s == ".." {
		return ""
	}
	return s
}

// Downscale an image to fit maxDim and return the encoded result with its
// file extension
func thumbnail(buf []byte, maxDim int) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return buf, sniffExtension(buf), nil
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return buf, "." + extensions[format], nil
	}
	if w > h {
		h = max(1, h*maxDim/w)
		w = maxDim
	} else {
		w = max(1, w*maxDim/h)
		h = maxDim
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	var out bytes.Buffer
	err = png.Encode(&out, dst)
	if err != nil {
		return nil, "", err
	}
	return out.Bytes(), ".png", nil
}

var extensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
}

func sniffExtension(buf []byte) string {
	switch http.DetectContentType(buf) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ".ico"
	}
}

// Write a single file to disk with the appropriate permissions and flags. If
// overwrite is false, existing files are kept.
func writeFile(path string, data []byte, overwrite bool) error {
	flags := fileCreationFlags
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0660)
	if err != nil {
		if !overwrite && os.IsExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	_, err = file.Write(data)
	return err
}

// CreateDirs creates directories for image storage
func (s *Store) CreateDirs(containers ...string) error {
	for _, c := range containers {
		if err := os.MkdirAll(filepath.Join(s.Dir, sanitize(c)), 0700); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDirs recursively deletes the image storage folder. Only used for
// cleaning up after tests.
func (s *Store) DeleteDirs() error {
	return os.RemoveAll(s.Dir)
}
