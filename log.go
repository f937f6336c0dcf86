package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// newLogger returns a console logger tagged with a fresh run id.
func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(level).With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()
}

var (
	progressc = color.New(color.BgBlue, color.FgWhite).PrintfFunc()
	successc  = color.New(color.BgGreen, color.FgBlack).PrintfFunc()
	warnc     = color.New(color.BgYellow, color.FgBlack).PrintfFunc()
)

// status prints the colored console line for an event and mirrors it into
// the structured log.
type status struct {
	log zerolog.Logger
}

func (s status) progress(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	progressc(" .. ")
	fmt.Fprintf(color.Output, " %s\n", msg)
	s.log.Debug().Msg(msg)
}

func (s status) success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	successc(" OK ")
	fmt.Fprintf(color.Output, " %s\n", msg)
	s.log.Info().Msg(msg)
}

func (s status) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	warnc(" !! ")
	fmt.Fprintf(color.Output, " %s\n", msg)
	s.log.Warn().Msg(msg)
}

func (s status) fail(err error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	errc(" ERROR ")
	fmt.Fprintf(color.Output, " %s: %v\n", msg, err)
	s.log.Error().Err(err).Msg(msg)
}
