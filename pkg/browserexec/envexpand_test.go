package browserexec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandWindowsEnvVars(t *testing.T) {
	t.Setenv("A", "foo")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"expands a closed token", `%A%\x`, `foo\x`},
		{"unterminated percent is verbatim", `%A\x`, `%A\x`},
		{"double percent collapses", `%%`, `%`},
		{"unset var preserved", `%MISSING%`, `%MISSING%`},
		{"no percent at all", `C:\Program Files`, `C:\Program Files`},
		{"percent mid string then text", `a%A%b`, `afoob`},
		{"trailing single percent", `abc%`, `abc%`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExpandWindowsEnvVars(tc.input))
		})
	}
}
