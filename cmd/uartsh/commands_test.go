//go:build linux

package main

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jangala-dev/tinygo-uartline/uartline"
)

// shellRunner runs one command line through the shell.
type shellRunner func(args ...string) error

func newTestShell(t *testing.T) (*uartline.Driver, *uartline.MemPort, shellRunner) {
	t.Helper()
	port := uartline.NewMemPort()
	d := uartline.New(port, uartline.Config{ID: 1})
	require.NoError(t, d.Init(9600))
	t.Cleanup(func() { d.Close() })
	sh := newShell(d)
	return d, port, func(args ...string) error { return sh.Process(args...) }
}

func TestShell_WriteCommands(t *testing.T) {
	_, port, run := newTestShell(t)

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"print", "hello", "world"}, "hello world\r"},
		{[]string{"println", "ok"}, "ok\r\n"},
		{[]string{"int", "-42"}, "-42\r\n"},
		{[]string{"int", "0x10"}, "16\r\n"},
		{[]string{"bool", "true"}, "true\r\n"},
		{[]string{"float", "3.14159"}, "3.14\r\n"},
		{[]string{"float", "54.321", "3"}, "54.321\r\n"},
		{[]string{"binary", "5"}, "00000101\r\n"},
		{[]string{"binary", "0x8001", "16"}, "1000000000000001\r\n"},
	}
	for _, tc := range cases {
		require.NoError(t, run(tc.args...))
		require.Equal(t, tc.want, string(port.TakeTransmitted()), strings.Join(tc.args, " "))
	}
}

func TestShell_BadArgumentsSendNothing(t *testing.T) {
	_, port, run := newTestShell(t)

	require.Error(t, run("int", "abc"))
	require.Error(t, run("float"))
	require.Error(t, run("binary", "3", "12"))
	require.Error(t, run("readline", "soon"))
	require.Empty(t, port.Transmitted())
}

func TestShell_ReadCommandsConsumeLines(t *testing.T) {
	d, port, run := newTestShell(t)

	port.InjectString("status ok\r12\rnot-a-number\r2.5e1\r")
	require.NoError(t, run("readline"))
	require.NoError(t, run("readint"))
	require.NoError(t, run("readint"), "text that is not a number reads as 0")
	require.NoError(t, run("readfloat"))
	require.Equal(t, 0, d.Buffered())
	require.Equal(t, uint32(1), d.Stats().ParseFallbacks)

	require.ErrorIs(t, run("readline", "10ms"), uartline.ErrTimedOut)
	require.Equal(t, uint32(1), d.Stats().Timeouts)
}

func TestShell_StatsResetAndDiscard(t *testing.T) {
	d, port, run := newTestShell(t)

	port.InjectString("junk")
	require.NoError(t, run("discard"))
	require.Equal(t, 0, d.Buffered())

	require.NoError(t, run("stats", "reset"))
	require.Equal(t, uartline.Stats{}, d.Stats())
}

func TestTimeoutArg(t *testing.T) {
	d, err := timeoutArg(nil, 0)
	require.NoError(t, err)
	require.Equal(t, readTimeout, d)

	d, err = timeoutArg([]string{"250ms"}, 0)
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, d)

	_, err = timeoutArg([]string{"soon"}, 0)
	require.Error(t, err)
}

func TestFormatStats(t *testing.T) {
	out := formatStats(uartline.Stats{Received: 7, Dropped: 2, TxBytes: 5})
	require.Contains(t, out, "received        7\n")
	require.Contains(t, out, "dropped         2\n")
	require.True(t, strings.HasSuffix(out, "tx bytes        5"))
}

func TestRun_ReturnsOpenErrorInsteadOfExiting(t *testing.T) {
	saved := device
	t.Cleanup(func() { device = saved })
	device = t.TempDir() + "/missing-tty"

	err := run([]string{"println", "hi"})
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.Contains(t, err.Error(), "open "+device)
}
