package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. It is usable before Init (JSON to stdout).
var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures Log for the given environment.
// "development" gets a human-readable console writer, anything else JSON.
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

// InitWithWriter is Init with an explicit output, used by tests.
func InitWithWriter(env string, out io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	if env == "development" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		Log = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}).
			With().
			Timestamp().
			Caller().
			Logger()
		return
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	Log = zerolog.New(out).
		With().
		Timestamp().
		Logger()
}

func Info() *zerolog.Event {
	return Log.Info()
}

func Error() *zerolog.Event {
	return Log.Error()
}

func Warn() *zerolog.Event {
	return Log.Warn()
}

func Debug() *zerolog.Event {
	return Log.Debug()
}

func Fatal() *zerolog.Event {
	return Log.Fatal()
}
