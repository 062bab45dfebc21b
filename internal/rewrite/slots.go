package rewrite

import (
	"fmt"

	"qemuwrapper/internal/argv"
)

// Slot is one field of the template that gets populated from the incoming arguments.
type Slot struct {
	Name          string
	TemplateToken string
	IncomingToken string
	Mode          argv.MatchMode
	// Offset 0 replaces the matched element itself, 1 replaces the element after it.
	Offset int
	// Transform, if set, converts the incoming value before substitution.
	Transform func(string) string
}

// DriveSpec wraps a disk image path into the virtio -drive value.
func DriveSpec(path string) string {
	return fmt.Sprintf("id=drive0,file=%s,if=virtio", path)
}

// DefaultSlots returns the slots in the order they are applied.
func DefaultSlots() []Slot {
	return []Slot{
		{Name: "VM name", TemplateToken: "VM-", IncomingToken: "VM-", Mode: argv.Substring},
		{Name: "socket id", TemplateToken: "socket,id=SOCKSYZ", IncomingToken: "socket,id=SOCKSYZ", Mode: argv.Substring},
		{Name: "netdev", TemplateToken: "-netdev", IncomingToken: "-netdev", Mode: argv.Exact, Offset: 1},
		{Name: "-smp", TemplateToken: "-smp", IncomingToken: "-smp", Mode: argv.Exact, Offset: 1},
		{Name: "-m", TemplateToken: "-m", IncomingToken: "-m", Mode: argv.Exact, Offset: 1},
		{Name: "-kernel", TemplateToken: "-kernel", IncomingToken: "-kernel", Mode: argv.Exact, Offset: 1},
		{Name: "-hda", TemplateToken: "-drive", IncomingToken: "-hda", Mode: argv.Exact, Offset: 1, Transform: DriveSpec},
	}
}
