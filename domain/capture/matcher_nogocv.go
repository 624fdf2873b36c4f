//go:build !gocv

package capture

import (
	"errors"
	"log/slog"
)

func newOpenCVMatcher(_ *slog.Logger) (Matcher, error) {
	return nil, errors.New("capture: opencv engine requires building with -tags gocv")
}
