// Package rewrite fills the fixed QEMU command-line template with the values
// syzkaller passes on its own command line.
package rewrite

import (
	"errors"
	"fmt"

	"qemuwrapper/internal/argv"
)

// ErrMissingToken is matched by every MissingTokenError.
var ErrMissingToken = errors.New("required argument not found")

// Side identifies which vector a lookup failed in.
type Side string

const (
	SideTemplate Side = "template"
	SideIncoming Side = "incoming"
)

// MissingTokenError reports a slot whose token (or the value after it) is absent.
type MissingTokenError struct {
	Slot  string
	Token string
	Side  Side
}

func (e *MissingTokenError) Error() string {
	return fmt.Sprintf("%s arg not found in %s arguments (looked for %q)", e.Slot, e.Side, e.Token)
}

func (e *MissingTokenError) Unwrap() error { return ErrMissingToken }

// Rewriter applies a slot table to a template.
type Rewriter struct {
	Template argv.Vector
	Slots    []Slot
	// OnApply is called after each slot is written with the template index and its new value.
	OnApply func(slot Slot, index int, value string)
}

// New returns a Rewriter using the default slot table.
func New(template argv.Vector) *Rewriter {
	return &Rewriter{Template: template, Slots: DefaultSlots()}
}

// Rewrite returns a copy of the template with every slot populated from incoming.
// It stops at the first slot that cannot be resolved; r.Template is never modified.
func (r *Rewriter) Rewrite(incoming argv.Vector) (argv.Vector, error) {
	out := r.Template.Clone()

	for _, slot := range r.Slots {
		ti, err := resolve(out, slot, slot.TemplateToken, SideTemplate)
		if err != nil {
			return nil, err
		}
		ii, err := resolve(incoming, slot, slot.IncomingToken, SideIncoming)
		if err != nil {
			return nil, err
		}

		value := incoming[ii]
		if slot.Transform != nil {
			value = slot.Transform(value)
		}
		out[ti] = value

		if r.OnApply != nil {
			r.OnApply(slot, ti, value)
		}
	}

	return out, nil
}

// resolve returns the index of the value slot refers to within v.
func resolve(v argv.Vector, slot Slot, token string, side Side) (int, error) {
	idx := argv.Locate(v, token, slot.Mode)
	if idx == argv.NotFound || idx+slot.Offset >= len(v) {
		return 0, &MissingTokenError{Slot: slot.Name, Token: token, Side: side}
	}
	return idx + slot.Offset, nil
}
