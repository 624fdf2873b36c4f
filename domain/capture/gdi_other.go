//go:build !windows

package capture

func newGDIGrabber() (Grabber, bool) { return nil, false }
