package intake

import (
	"fmt"
	"strings"

	"github.com/dharsanguruparan/FabIntake/internal/model"
)

// MaxFileSize is the per-file limit, the same for every device.
const MaxFileSize int64 = 50 << 20 // 50 MiB

// Extension returns the lower-cased suffix of name starting at its last dot,
// or "" when name has no dot.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	ext := strings.ToLower(name[i:])
	if ext == "." {
		return ""
	}
	return ext
}

// Accepts reports whether the device's rule set contains ext.
func Accepts(device model.Device, ext string) bool {
	if ext == "" {
		return false
	}
	for _, e := range device.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Validate checks one file against the rules of device. It returns nil or a
// *RejectionError carrying the user-facing message.
func Validate(device model.Device, f File) error {
	if f.Size() > MaxFileSize {
		return &RejectionError{
			FileName: f.Name(),
			Kind:     ErrOversizeFile,
			Message:  fmt.Sprintf("File \"%s\" size exceeds the limit of %d MB.", f.Name(), MaxFileSize>>20),
		}
	}
	if !Accepts(device, Extension(f.Name())) {
		return &RejectionError{
			FileName: f.Name(),
			Kind:     ErrUnsupportedType,
			Message: fmt.Sprintf("File \"%s\" is not supported for %s. Accepted types: %s.",
				f.Name(), device.Name, strings.Join(device.Extensions, ", ")),
		}
	}
	return nil
}
