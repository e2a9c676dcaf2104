package model

type ProfileKind int

const (
	NativeLinux ProfileKind = iota
	PosixCompat
	WindowsCross
)

func (k ProfileKind) String() string {
	switch k {
	case NativeLinux:
		return "native-linux"
	case PosixCompat:
		return "posix-compat"
	case WindowsCross:
		return "windows-cross"
	default:
		return "unknown"
	}
}

// BuildsNatively reports whether the backend is compiled by the host toolchain.
func (k ProfileKind) BuildsNatively() bool {
	return k != WindowsCross
}
