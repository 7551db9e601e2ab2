package util

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the compiler's single global logger, gated by Options.Verbose the
// same way vslc gates its fmt.Println phase timings behind opt.Verbose.
// Unlike vslc, writes go through zerolog so that phase timings,
// optimization coverage, and JIT symbol resolution come out as structured,
// leveled lines instead of ad hoc Printf calls.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
	With().Timestamp().Logger().Level(zerolog.Disabled)

// ConfigureLog sets the logger's level from Options: verbose enables debug
// logging, quiet raises the bar to errors only, and the default is info.
func ConfigureLog(opt Options) {
	switch {
	case opt.Verbose:
		Log = Log.Level(zerolog.DebugLevel)
	case opt.Quiet:
		Log = Log.Level(zerolog.ErrorLevel)
	default:
		Log = Log.Level(zerolog.InfoLevel)
	}
}

// Phase times a single compiler phase and logs its duration at debug level,
// the structured equivalent of vslc's verbose phase-timing prints.
func Phase(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	Log.Debug().Str("phase", name).Dur("elapsed", time.Since(start)).Msg("phase complete")
	return err
}
