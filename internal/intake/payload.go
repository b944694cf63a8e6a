package intake

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/dharsanguruparan/FabIntake/internal/model"
)

// Multipart field names understood by the submission backend.
const (
	FieldFiles    = "files"
	FieldDevice   = "deviceType"
	FieldPriority = "priority"
)

// Payload is the batch handed to a Submitter.
type Payload struct {
	Files    []File
	Device   model.DeviceType
	Priority model.Priority
}

// Submitter is the boundary that receives a finished batch. Implementations
// own their timeout and retry policy; the intake adds none.
type Submitter interface {
	Submit(ctx context.Context, p Payload) error
}

// FileNames lists the file names in submission order.
func (p Payload) FileNames() []string {
	names := make([]string, len(p.Files))
	for i, f := range p.Files {
		names[i] = f.Name()
	}
	return names
}

// TotalSize sums the declared sizes of all files.
func (p Payload) TotalSize() int64 {
	var total int64
	for _, f := range p.Files {
		total += f.Size()
	}
	return total
}

// WriteMultipart encodes the payload as multipart/form-data into w: one
// "files" part per file in order, then "deviceType" and "priority". It returns
// the Content-Type header value including the boundary.
func (p Payload) WriteMultipart(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)
	for _, f := range p.Files {
		if err := writeFilePart(mw, f); err != nil {
			return "", err
		}
	}
	if err := mw.WriteField(FieldDevice, string(p.Device)); err != nil {
		return "", fmt.Errorf("write %s: %w", FieldDevice, err)
	}
	if err := mw.WriteField(FieldPriority, string(p.Priority)); err != nil {
		return "", fmt.Errorf("write %s: %w", FieldPriority, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}
	return mw.FormDataContentType(), nil
}

func writeFilePart(mw *multipart.Writer, f File) error {
	part, err := mw.CreateFormFile(FieldFiles, f.Name())
	if err != nil {
		return fmt.Errorf("create part for %s: %w", f.Name(), err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name(), err)
	}
	defer rc.Close()
	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("copy %s: %w", f.Name(), err)
	}
	return nil
}
