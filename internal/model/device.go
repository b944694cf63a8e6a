// Package model contains the enumerations and catalog shared by the intake
// component, the HTTP surface and the CLI.
package model

import (
	"fmt"
	"strings"
)

// DeviceType names a fabrication device category. The string value is the
// wire value used in the submitted "deviceType" field.
type DeviceType string

const (
	Device3DPrinter   DeviceType = "3d-printer"
	DeviceLaserCutter DeviceType = "laser-cutter"
	DevicePCBPrinter  DeviceType = "pcb-printer"
)

// DefaultDevice is active when a form session starts.
const DefaultDevice = Device3DPrinter

// Priority is project metadata carried along with a submission.
type Priority string

const (
	PrioritySchool   Priority = "school"
	PriorityPersonal Priority = "personal"
)

// DefaultPriority is active when a form session starts.
const DefaultPriority = PriorityPersonal

// Device describes one entry of the device catalog.
type Device struct {
	ID          DeviceType `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	// Extensions are the accepted file extensions, leading dot included,
	// lower-case, in display order.
	Extensions []string `json:"extensions"`
}

// Accept returns the comma-joined extension list suitable for a file picker
// accept attribute.
func (d Device) Accept() string {
	return strings.Join(d.Extensions, ",")
}

// Catalog lists every supported device in display order.
var Catalog = []Device{
	{
		ID:          Device3DPrinter,
		Name:        "3D Printer",
		Description: "PLA, ABS, PETG materials",
		Extensions:  []string{".stl", ".obj", ".gcode"},
	},
	{
		ID:          DeviceLaserCutter,
		Name:        "Laser Cutter",
		Description: "Acrylic, wood, paper cutting",
		Extensions:  []string{".svg", ".dxf", ".pdf"},
	},
	{
		ID:          DevicePCBPrinter,
		Name:        "PCB Printer",
		Description: "Circuit board boards",
		Extensions:  []string{".gerber", ".gbr", ".zip"},
	},
}

// Lookup returns the catalog entry for id.
func Lookup(id DeviceType) (Device, bool) {
	for _, d := range Catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

// ParseDevice validates a wire value.
func ParseDevice(s string) (DeviceType, error) {
	d := DeviceType(s)
	if _, ok := Lookup(d); !ok {
		return "", fmt.Errorf("unknown device %q", s)
	}
	return d, nil
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p == PrioritySchool || p == PriorityPersonal
}

// ParsePriority validates a wire value.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}
