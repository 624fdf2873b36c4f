//go:build !windows

package debug

import "errors"

var errUnsupported = errors.New("debug: rss not supported on this platform")

func processRSS() (uint64, error) { return 0, errUnsupported }
