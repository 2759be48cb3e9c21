//go:build !tinygo

package uartline

import "github.com/golang/glog"

// Host builds log through glog; enable driver detail with -v=1 (init/close)
// or -v=3 (read timeouts).

func logV(level glog.Level, format string, args ...any) {
	glog.V(level).Infof(format, args...)
}

func logError(format string, args ...any) {
	glog.Errorf(format, args...)
}
