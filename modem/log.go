package modem

import (
	"os"

	"github.com/charmbracelet/log"
)

// logger is the package-wide diagnostic sink. spec.md §7 requires every
// recoverable error kind to go to stderr without becoming fatal; this
// replaces the teacher's dw_printf/text_color_set (src/textcolor.go) with
// a structured logger in the same "just a diagnostic, never fatal" spirit.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
	Level:           log.WarnLevel,
})

// SetLogger replaces the package logger, e.g. so a CLI front-end can raise
// the level or redirect output. Passing nil restores the default.
func SetLogger(l *log.Logger) {
	if l == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false, Level: log.WarnLevel})
		return
	}
	logger = l
}
