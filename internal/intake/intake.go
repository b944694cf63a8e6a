// Package intake holds the state of one fabrication request form: the chosen
// device and priority, the files staged so far, a single error slot and the
// submission lifecycle.
//
// Every exported method runs to completion under the intake's mutex, so
// concurrent callers observe the same sequencing an event loop would give.
// Submit is the only operation that waits on something external; it drops the
// lock while the Submitter runs and refuses a second submission meanwhile.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/FabIntake/internal/model"
)

// StagedFile is a file that passed validation and waits for submission.
type StagedFile struct {
	ID      string
	File    File
	Preview string
}

// Intake is the state of one form session. The zero value is not usable;
// construct it with New.
type Intake struct {
	mu         sync.Mutex
	device     model.DeviceType
	priority   model.Priority
	files      []StagedFile
	errMsg     string
	notice     string
	submitting bool
	closed     bool

	submitter Submitter
	logger    *slog.Logger
	newID     func() string
	validate  func(model.Device, File) error
}

// Option customises an Intake.
type Option func(*Intake)

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(in *Intake) { in.logger = l }
}

// WithIDGenerator replaces the staged-file id generator.
func WithIDGenerator(fn func() string) Option {
	return func(in *Intake) { in.newID = fn }
}

// New returns an intake with the default device and priority and no files.
func New(submitter Submitter, opts ...Option) *Intake {
	in := &Intake{
		device:    model.DefaultDevice,
		priority:  model.DefaultPriority,
		submitter: submitter,
		logger:    slog.Default(),
		newID:     uuid.NewString,
		validate:  Validate,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// SelectDevice switches the active rule set. Files already staged are kept
// as they are.
func (in *Intake) SelectDevice(d model.DeviceType) error {
	if _, ok := model.Lookup(d); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDevice, d)
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.device = d
	return nil
}

// SelectPriority sets the priority sent along with the batch.
func (in *Intake) SelectPriority(p model.Priority) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPriority, p)
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.priority = p
	return nil
}

// IngestReport lists what happened to each candidate of one Ingest call.
type IngestReport struct {
	Staged   []StagedFile
	Rejected []*RejectionError
}

// Ingest validates candidates in order against the active device. Accepted
// files are appended to the staged list; rejected files are discarded. The
// error slot is cleared first and then holds the message of the last
// rejection, if any. One bad file never stops the rest of the batch.
func (in *Intake) Ingest(candidates []File) (IngestReport, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	var report IngestReport
	if in.closed {
		for _, f := range candidates {
			discard(f)
		}
		return report, ErrClosed
	}

	device, _ := model.Lookup(in.device)
	in.errMsg = ""
	in.notice = ""
	for _, f := range candidates {
		if err := in.validate(device, f); err != nil {
			rej := asRejection(f, err)
			in.errMsg = rej.Message
			report.Rejected = append(report.Rejected, rej)
			filesRejectedTotal.WithLabelValues(string(device.ID), rejectionReason(rej)).Inc()
			discard(f)
			continue
		}
		sf := StagedFile{ID: in.newID(), File: f}
		in.files = append(in.files, sf)
		report.Staged = append(report.Staged, sf)
		filesStagedTotal.WithLabelValues(string(device.ID)).Inc()
	}
	in.logger.Debug("ingest",
		slog.String("device", string(device.ID)),
		slog.Int("staged", len(report.Staged)),
		slog.Int("rejected", len(report.Rejected)),
	)
	return report, nil
}

// asRejection returns err as a *RejectionError, wrapping any other error so
// its text still lands in the error slot.
func asRejection(f File, err error) *RejectionError {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej
	}
	return &RejectionError{FileName: f.Name(), Kind: err, Message: err.Error()}
}

// RemoveStaged drops the staged file with the given id and reports whether
// it was present. The error slot is left alone.
func (in *Intake) RemoveStaged(id string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i, sf := range in.files {
		if sf.ID != id {
			continue
		}
		in.files = append(in.files[:i:i], in.files[i+1:]...)
		if !in.submitting {
			discard(sf.File)
		}
		return true
	}
	return false
}

// Submit sends the staged batch through the Submitter and waits for it.
//
// With nothing staged it sets the error slot and returns ErrEmptyBatch. On
// success the staged list is emptied and a notice is set. On failure the
// staged files are kept for another attempt and the returned error wraps both
// ErrSubmissionFailed and the Submitter's error.
func (in *Intake) Submit(ctx context.Context) error {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return ErrClosed
	}
	if in.submitting {
		in.mu.Unlock()
		return ErrSubmitInProgress
	}
	if len(in.files) == 0 {
		in.errMsg = MsgEmptyBatch
		submissionsTotal.WithLabelValues(string(in.device), string(in.priority), "empty").Inc()
		in.mu.Unlock()
		return ErrEmptyBatch
	}
	in.submitting = true
	in.errMsg = ""
	in.notice = ""
	sent := append([]StagedFile(nil), in.files...)
	payload := Payload{
		Files:    make([]File, len(sent)),
		Device:   in.device,
		Priority: in.priority,
	}
	for i, sf := range sent {
		payload.Files[i] = sf.File
	}
	in.mu.Unlock()

	in.logger.Info("submitting project",
		slog.Any("files", payload.FileNames()),
		slog.String("device", string(payload.Device)),
		slog.String("priority", string(payload.Priority)),
	)
	err := in.submitter.Submit(ctx, payload)

	in.mu.Lock()
	defer in.mu.Unlock()
	in.submitting = false
	if err != nil {
		submissionsTotal.WithLabelValues(string(payload.Device), string(payload.Priority), "failure").Inc()
		in.logger.Warn("submission failed", slog.String("error", err.Error()))
		in.errMsg = MsgSubmissionFailed
		// Files removed while the submitter was reading them are no longer
		// referenced by the list; release them now.
		in.discardOrphans(sent)
		if in.closed {
			in.discardAll()
		}
		return fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	submissionsTotal.WithLabelValues(string(payload.Device), string(payload.Priority), "success").Inc()
	in.discardOrphans(sent)
	in.discardAll()
	in.notice = MsgSubmitted
	return nil
}

// Close ends the form session and releases every staged file. Later calls to
// Ingest and Submit fail with ErrClosed. A submission in flight keeps its
// files until it returns.
func (in *Intake) Close() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return
	}
	in.closed = true
	if !in.submitting {
		in.discardAll()
	}
}

func (in *Intake) discardAll() {
	for _, sf := range in.files {
		discard(sf.File)
	}
	in.files = nil
}

// discardOrphans releases the files of sent that are no longer staged.
func (in *Intake) discardOrphans(sent []StagedFile) {
	staged := make(map[string]struct{}, len(in.files))
	for _, sf := range in.files {
		staged[sf.ID] = struct{}{}
	}
	for _, sf := range sent {
		if _, ok := staged[sf.ID]; !ok {
			discard(sf.File)
		}
	}
}
