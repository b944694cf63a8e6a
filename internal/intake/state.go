package intake

import "github.com/dharsanguruparan/FabIntake/internal/model"

// FileView is the rendered form of a staged file.
type FileView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	SizeText string `json:"sizeText"`
	Preview  string `json:"preview,omitempty"`
}

// State is a point-in-time copy of an intake, shaped for rendering.
type State struct {
	Device   model.DeviceType `json:"device"`
	Priority model.Priority   `json:"priority"`
	// Accept is the file picker hint for the active device. It only
	// suggests; Ingest enforces.
	Accept     string     `json:"accept"`
	Files      []FileView `json:"files"`
	Error      string     `json:"error,omitempty"`
	Notice     string     `json:"notice,omitempty"`
	Submitting bool       `json:"submitting"`
	CanSubmit  bool       `json:"canSubmit"`
}

// State returns a snapshot of the intake.
func (in *Intake) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	device, _ := model.Lookup(in.device)
	st := State{
		Device:     in.device,
		Priority:   in.priority,
		Accept:     device.Accept(),
		Files:      make([]FileView, 0, len(in.files)),
		Error:      in.errMsg,
		Notice:     in.notice,
		Submitting: in.submitting,
		CanSubmit:  len(in.files) > 0 && !in.submitting,
	}
	for _, sf := range in.files {
		st.Files = append(st.Files, FileView{
			ID:       sf.ID,
			Name:     sf.File.Name(),
			Size:     sf.File.Size(),
			SizeText: FormatSize(sf.File.Size()),
			Preview:  sf.Preview,
		})
	}
	return st
}
