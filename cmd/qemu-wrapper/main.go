// Command qemu-wrapper stands in for qemu-system-x86_64 under syzkaller.
// It copies the per-VM values from syzkaller's command line into a fixed
// QEMU command line and execs the real QEMU with QEMU_BIOS_IN_RAM=1.
//
// Paths are fixed at build time:
//
//	go build -ldflags "-X qemuwrapper/internal/config.LauncherPath=/opt/qemu/bin/qemu-system-x86_64 \
//	    -X qemuwrapper/internal/config.BIOSPath=/opt/qemu/share/bios.bin" ./cmd/qemu-wrapper
package main

import (
	"os"

	"qemuwrapper/internal/wrapper"
)

func main() {
	os.Exit(wrapper.Main())
}
