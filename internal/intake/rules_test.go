package intake

import (
	"errors"
	"testing"

	"github.com/dharsanguruparan/FabIntake/internal/model"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "part.svg", ".svg"},
		{"upper case", "PART.SVG", ".svg"},
		{"last dot wins", "board.v2.GBR", ".gbr"},
		{"no dot", "gcode", ""},
		{"trailing dot", "model.", ""},
		{"hidden file", ".stl", ".stl"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extension(tt.in); got != tt.want {
				t.Errorf("Extension(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	printer, _ := model.Lookup(model.Device3DPrinter)
	laser, _ := model.Lookup(model.DeviceLaserCutter)
	pcb, _ := model.Lookup(model.DevicePCBPrinter)

	tests := []struct {
		name    string
		device  model.Device
		file    File
		wantErr error
	}{
		{"stl on printer", printer, NewSizedFile("a.stl", 1), nil},
		{"gcode at limit", printer, NewSizedFile("a.gcode", MaxFileSize), nil},
		{"one byte over", printer, NewSizedFile("a.gcode", MaxFileSize+1), ErrOversizeFile},
		{"oversize wins over type", printer, NewSizedFile("a.exe", MaxFileSize+1), ErrOversizeFile},
		{"svg on printer", printer, NewSizedFile("a.svg", 1), ErrUnsupportedType},
		{"pdf on laser", laser, NewSizedFile("a.PDF", 1), nil},
		{"zip on pcb", pcb, NewSizedFile("gerbers.zip", 1), nil},
		{"gerber on pcb", pcb, NewSizedFile("top.gerber", 1), nil},
		{"stl on pcb", pcb, NewSizedFile("top.stl", 1), ErrUnsupportedType},
		{"empty file", laser, NewSizedFile("empty.dxf", 0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.device, tt.file)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			var rej *RejectionError
			if !errors.As(err, &rej) || rej.FileName != tt.file.Name() {
				t.Fatalf("expected RejectionError for %s, got %#v", tt.file.Name(), err)
			}
		})
	}
}

func TestUnsupportedMessageListsDeviceRules(t *testing.T) {
	pcb, _ := model.Lookup(model.DevicePCBPrinter)
	err := Validate(pcb, NewSizedFile("case.stl", 1))
	want := `File "case.stl" is not supported for PCB Printer. Accepted types: .gerber, .gbr, .zip.`
	if err == nil || err.Error() != want {
		t.Fatalf("message = %v, want %q", err, want)
	}
}
