package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path under which stored files are served.
const URLPrefix = "/uploads"

// Disk stores uploaded files below a root directory and names them with a
// random id so client-supplied names never reach the filesystem.
type Disk struct {
	root  string
	newID func() string
}

func NewDisk(root string) *Disk {
	return &Disk{root: root, newID: uuid.NewString}
}

// Root is the directory served under URLPrefix.
func (d *Disk) Root() string { return d.root }

// Save copies the uploaded file into dir (relative to the root) and returns
// its public URL, e.g. /uploads/dailyActivities/<id>.png.
func (d *Disk) Save(fh *multipart.FileHeader, dir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir = path.Clean("/" + filepath.ToSlash(dir))[1:]
	target := filepath.Join(d.root, filepath.FromSlash(dir))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := d.newID() + safeExt(fh.Filename)
	out, err := os.Create(filepath.Join(target, name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}

	return path.Join(URLPrefix, dir, name), nil
}

// Remove deletes a file previously returned by Save. URLs outside URLPrefix
// are ignored and a missing file is not an error.
func (d *Disk) Remove(url string) error {
	rel, ok := strings.CutPrefix(path.Clean("/"+url), URLPrefix+"/")
	if !ok || rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(d.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// safeExt keeps a short alphanumeric extension and drops anything else.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
