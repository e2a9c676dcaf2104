//go:build linux

package profile

import (
	"os"

	"golang.org/x/sys/unix"
)

func currentHost() HostInfo {
	info := HostInfo{
		GOOS:      hostGOOS(),
		WSLDistro: os.Getenv("WSL_DISTRO_NAME"),
	}
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		info.KernelRelease = unix.ByteSliceToString(uts.Release[:])
	}
	if version, err := os.ReadFile("/proc/version"); err == nil {
		info.ProcVersion = string(version)
	}
	return info
}
