package intake

import "errors"

// Sentinel errors. Every one of them is recoverable; the intake stays usable.
var (
	ErrOversizeFile     = errors.New("file exceeds size limit")
	ErrUnsupportedType  = errors.New("file type not supported for device")
	ErrEmptyBatch       = errors.New("no files staged")
	ErrSubmissionFailed = errors.New("submission failed")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrUnknownDevice    = errors.New("unknown device")
	ErrUnknownPriority  = errors.New("unknown priority")
	ErrClosed           = errors.New("intake closed")
)

// User-facing messages placed in the error and notice slots.
const (
	MsgEmptyBatch       = "Please upload at least one file."
	MsgSubmissionFailed = "Failed to submit project. Please try again later."
	MsgSubmitted        = "Project submitted successfully! You will receive updates on Discord."
)

// RejectionError describes a file that failed validation.
type RejectionError struct {
	FileName string
	// Kind is ErrOversizeFile, ErrUnsupportedType or the error of a failed
	// check that produced no RejectionError itself.
	Kind    error
	Message string
}

func (e *RejectionError) Error() string { return e.Message }

func (e *RejectionError) Unwrap() error { return e.Kind }
