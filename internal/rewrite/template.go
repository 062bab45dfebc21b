package rewrite

import "qemuwrapper/internal/argv"

// Placeholder values in the template. Each one is overwritten by a slot before launch.
const (
	placeholderVMName = "VM-0"
	placeholderSocket = "socket,id=SOCKSYZ,server=on,nowait,host=localhost,port=51727"
	placeholderCPUs   = "3"
	placeholderMemory = "6G"
	placeholderKernel = "KERNEL_PATH_GOES_HERE"
	placeholderDisk   = "id=drive0,file=DISK_PATH_GOES_HERE,if=virtio"
	placeholderNetdev = "NETDEV_ARG_GOES_HERE"
)

// guestCmdline is the kernel command line handed to the guest via -append.
const guestCmdline = "earlyprintk=ttyS0 console=hvc0 init=/sbin/init root=/dev/vda rw nokaslr " +
	"tdx_wlist_devids=pci:0x8086:0x29c0,acpi:PNP0501 force_tdx_guest mitigations=off mce=off"

// DefaultTemplate returns the QEMU command line the wrapper launches, with
// placeholders for the host-specific values. bios is the firmware image passed to -bios.
// Each call returns a fresh vector.
func DefaultTemplate(bios string) argv.Vector {
	return argv.Vector{
		"qemu_wrapper",
		"-chardev", placeholderSocket,
		"-mon", "chardev=SOCKSYZ,mode=control",
		"-name", placeholderVMName,
		"-device", "virtio-rng-pci",
		"-display", "none",
		"-enable-kvm",
		"-machine", "q35,accel=kvm,kernel_irqchip,sata=false,smbus=false",
		"-smp", placeholderCPUs,
		"-bios", bios,
		"-m", placeholderMemory,
		"-cpu", "host,host-phys-bits,-la57",
		"-kernel", placeholderKernel,
		"-nodefaults",
		"-drive", placeholderDisk,
		"-snapshot",
		"-device", "virtio-serial",
		"-device", "virtconsole,chardev=stdio",
		"-chardev", "stdio,mux=on,id=stdio,signal=off",
		"-device", "isa-serial,chardev=stdio",
		"-netdev", placeholderNetdev,
		"-device", "virtio-net-pci,netdev=net0",
		"-append", guestCmdline,
		"-no-reboot",
		"-nographic",
	}
}
