//go:build tinygo

package uartline

// No logging on the microcontroller build.

type logLevel int32

func logV(logLevel, string, ...any) {}
func logError(string, ...any)       {}
