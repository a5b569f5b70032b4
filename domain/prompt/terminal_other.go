//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package prompt

import "os"

// Interactive assumes a terminal where it cannot be detected.
func Interactive(f *os.File) bool { return f != nil }
