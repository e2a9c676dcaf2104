//go:build !linux

package profile

func currentHost() HostInfo {
	return HostInfo{GOOS: hostGOOS()}
}
