package launcher

import (
	"slices"

	"github.com/samber/lo"
)

// Environment is the complete environment of the launched process.
// The wrapper's own environment is never passed through.
type Environment map[string]string

// QEMUEnvironment is the environment QEMU runs with after a rewrite.
func QEMUEnvironment() Environment {
	return Environment{"QEMU_BIOS_IN_RAM": "1"}
}

// Entries renders env as sorted "KEY=VALUE" strings. A nil or empty
// Environment yields an empty, non-nil slice.
func (e Environment) Entries() []string {
	entries := lo.MapToSlice(e, func(k, v string) string {
		return k + "=" + v
	})
	slices.Sort(entries)
	return entries
}
