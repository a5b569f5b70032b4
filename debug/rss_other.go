//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package debug

import "errors"

func peakRSS() (uint64, error) { return 0, errors.New("rss not available on this platform") }
