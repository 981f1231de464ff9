package layout

// Target describes the C data model of the platform the bindings run on.
type Target struct {
	Triple    string // e.g. "x86_64-linux-gnu"
	PtrSize   int    // bytes
	PtrAlign  int    // bytes
	LongSize  int    // bytes of C long
	WCharSize int    // bytes of wchar_t
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:    "x86_64-linux-gnu",
		PtrSize:   8,
		PtrAlign:  8,
		LongSize:  8,
		WCharSize: 4,
	}
}

// X86_64Windows is the LLP64 data model: long stays 32-bit.
func X86_64Windows() Target {
	return Target{
		Triple:    "x86_64-pc-windows-msvc",
		PtrSize:   8,
		PtrAlign:  8,
		LongSize:  4,
		WCharSize: 2,
	}
}
