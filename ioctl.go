//go:build linux

package dice

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl performs a generic ioctl syscall.
func ioctl(fd uintptr, req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, arg)
	if errno != 0 {
		return errno
	}

	return nil
}

const (
	iocNrbits    = 8
	iocTypebits  = 8
	iocSizebits  = 14
	iocNrshift   = 0
	iocTypeshift = iocNrshift + iocNrbits
	iocSizeshift = iocTypeshift + iocTypebits
	iocDirshift  = iocSizeshift + iocSizebits

	iocNone  = 0
	iocWrite = 1
	iocRead  = 2
)

// ioc builds an ioctl request code in the encoding of asm-generic/ioctl.h.
func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirshift) | (typ << iocTypeshift) | (nr << iocNrshift) | (size << iocSizeshift)
}

// ioNone builds an ioctl request code for a command with no data transfer.
func ioNone(typ, nr uintptr) uintptr {
	return ioc(iocNone, typ, nr, 0)
}

// iow builds an ioctl request code for a write-only operation.
func iow(typ, nr, size uintptr) uintptr {
	return ioc(iocWrite, typ, nr, size)
}

// ior builds a read-only ioctl request code.
func ior(typ, nr, size uintptr) uintptr {
	return ioc(iocRead, typ, nr, size)
}

// iowr builds a read-write ioctl request code.
func iowr(typ, nr, size uintptr) uintptr {
	return ioc(iocRead|iocWrite, typ, nr, size)
}

var (
	// Character device of IEEE 1394 subsystem ('#').
	FW_CDEV_IOC_GET_INFO     = iowr('#', 0x00, unsafe.Sizeof(fwCdevGetInfo{}))
	FW_CDEV_IOC_SEND_REQUEST = iow('#', 0x01, unsafe.Sizeof(fwCdevSendRequest{}))

	// Hwdep device of ALSA firewire drivers ('H').
	SNDRV_FIREWIRE_IOCTL_GET_INFO = ior('H', 0xf8, unsafe.Sizeof(sndFirewireGetInfo{}))
	SNDRV_FIREWIRE_IOCTL_LOCK     = ioNone('H', 0xf9)
	SNDRV_FIREWIRE_IOCTL_UNLOCK   = ioNone('H', 0xfa)
)
