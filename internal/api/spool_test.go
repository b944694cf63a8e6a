package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"os"
	"testing"

	"github.com/dharsanguruparan/FabIntake/internal/intake"
)

func TestSpoolKeepsTrueSizeButBoundsDisk(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(intake.FieldFiles, "huge.stl")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := io.CopyN(part, zeroReader{}, intake.MaxFileSize+10); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.WriteField("note", "ignored")
	mw.Close()

	dir := t.TempDir()
	files, err := spoolFiles(dir, multipart.NewReader(&buf, mw.Boundary()))
	if err != nil {
		t.Fatalf("spool: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("spooled %d files, want 1", len(files))
	}
	f := files[0].(*spooledFile)
	if f.Name() != "huge.stl" || f.Size() != intake.MaxFileSize+10 {
		t.Fatalf("name %q size %d", f.Name(), f.Size())
	}
	info, err := os.Stat(f.path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != intake.MaxFileSize+1 {
		t.Fatalf("on-disk size = %d, want %d", info.Size(), intake.MaxFileSize+1)
	}
	if _, err := f.Open(); err == nil {
		t.Fatalf("opening a truncated spool should fail")
	}

	if err := f.Discard(); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if err := f.Discard(); err != nil {
		t.Fatalf("second discard: %v", err)
	}
	if _, err := os.Stat(f.path); !os.IsNotExist(err) {
		t.Fatalf("spool file still present: %v", err)
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
