package styles

import (
	"os"

	"github.com/muesli/termenv"
)

var (
	stdout = termenv.NewOutput(os.Stdout)
	stderr = termenv.NewOutput(os.Stderr)

	ERROR = func(s string) string {
		return stderr.String(s).
			Foreground(stderr.Color("9")).
			String()
	}
	COMMAND = func(s string) string {
		return stdout.String(s).
			Foreground(stdout.Color("10")).
			Bold().
			String()
	}
	HEADING = func(s string) string {
		return stdout.String(s).
			Foreground(stdout.Color("12")).
			Bold().
			String()
	}
	NOTICE = func(s string) string {
		return stderr.String(s).
			Foreground(stderr.Color("8")).
			String()
	}
)
