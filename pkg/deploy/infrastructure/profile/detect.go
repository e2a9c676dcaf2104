package profile

import (
	"runtime"
	"strings"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
)

// HostInfo is what classification looks at.
type HostInfo struct {
	GOOS          string
	KernelRelease string
	ProcVersion   string
	WSLDistro     string
}

// Detect classifies the local host.
func Detect() model.ProfileKind {
	return Classify(currentHost())
}

// Classify maps host facts to a build profile. A POSIX layer on top of the
// Windows kernel reports a Linux GOOS with a Microsoft kernel release.
func Classify(info HostInfo) model.ProfileKind {
	if info.GOOS == "linux" && isWindowsKernel(info) {
		return model.PosixCompat
	}
	if info.GOOS != "windows" {
		return model.NativeLinux
	}
	return model.WindowsCross
}

func isWindowsKernel(info HostInfo) bool {
	if info.WSLDistro != "" {
		return true
	}
	for _, s := range []string{info.KernelRelease, info.ProcVersion} {
		s = strings.ToLower(s)
		if strings.Contains(s, "microsoft") || strings.Contains(s, "wsl") {
			return true
		}
	}
	return false
}

func hostGOOS() string {
	return runtime.GOOS
}
