package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogged checks that a text log line with msg was written, carrying
// every given key=value pair.
func AssertLogged(t *testing.T, logs, msg string, keyValues ...string) {
	t.Helper()

	require.True(t, len(keyValues)%2 == 0, "keyValues must come in pairs")
	for _, line := range strings.Split(logs, "\n") {
		if !strings.Contains(line, "msg=\""+msg+"\"") && !strings.Contains(line, "msg="+msg) {
			continue
		}
		matched := true
		for i := 0; i < len(keyValues); i += 2 {
			if !strings.Contains(line, keyValues[i]+"="+keyValues[i+1]) {
				matched = false
				break
			}
		}
		if matched {
			return
		}
	}
	require.Failf(t, "log line not found", "no log line %q with %v in:\n%s", msg, keyValues, logs)
}

// AssertLogOrder checks that the messages appear in the log in the given
// order.
func AssertLogOrder(t *testing.T, logs string, msgs ...string) {
	t.Helper()

	pos := 0
	for _, msg := range msgs {
		i := strings.Index(logs[pos:], msg)
		require.True(t, i >= 0, "expected %q after offset %d in log output", msg, pos)
		pos += i + len(msg)
	}
}
