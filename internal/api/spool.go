package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"

	"github.com/dharsanguruparan/FabIntake/internal/intake"
)

// spooledFile is an uploaded part written to the staging directory. Only the
// first intake.MaxFileSize+1 bytes are kept on disk; the rest is counted and
// dropped so size carries the true length while disk use stays bounded.
type spooledFile struct {
	name string
	path string
	size int64

	once sync.Once
}

func (f *spooledFile) Name() string { return f.name }
func (f *spooledFile) Size() int64  { return f.size }

func (f *spooledFile) Open() (io.ReadCloser, error) {
	if f.size > intake.MaxFileSize {
		return nil, fmt.Errorf("%s was truncated while spooling", f.name)
	}
	return os.Open(f.path)
}

// Discard removes the spooled bytes. Safe to call more than once.
func (f *spooledFile) Discard() error {
	var err error
	f.once.Do(func() {
		if rmErr := os.Remove(f.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = rmErr
		}
	})
	return err
}

// spoolPart streams one multipart part into dir.
func spoolPart(dir string, part *multipart.Part) (*spooledFile, error) {
	defer part.Close()
	tmp, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	defer tmp.Close()

	// io.LimitReader stops after MaxFileSize+1 bytes, which is enough for the
	// size rule to see the file is too large. Whatever is left is read into
	// io.Discard below only to count it.
	kept, err := io.Copy(tmp, io.LimitReader(part, intake.MaxFileSize+1))
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write spool file: %w", err)
	}
	dropped, err := io.Copy(io.Discard, part)
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("read part: %w", err)
	}
	name := filepath.Base(part.FileName())
	return &spooledFile{name: name, path: tmp.Name(), size: kept + dropped}, nil
}

// spoolFiles reads every "files" part of mr. On error all parts spooled so far
// are removed.
func spoolFiles(dir string, mr *multipart.Reader) ([]intake.File, error) {
	var files []intake.File
	cleanup := func() {
		for _, f := range files {
			_ = f.(*spooledFile).Discard()
		}
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			cleanup()
			return nil, err
		}
		if part.FormName() != intake.FieldFiles || part.FileName() == "" {
			part.Close()
			continue
		}
		f, err := spoolPart(dir, part)
		if err != nil {
			cleanup()
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
