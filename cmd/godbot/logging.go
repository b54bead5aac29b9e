package main

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// godbot logs to stderr so that chat answers and exported configs on stdout
// stay clean. Warnings and up by default: a failed generation is a warning.
const (
	defaultLogLevel = zerolog.WarnLevel

	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
	logFileMaxAgeDays = 28
)

type logConfig struct {
	WithCaller bool
	Level      string
	LogFormat  string
	LogFile    string
}

func parseLogLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return defaultLogLevel, nil
	}
	ret, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid --log-level %q", level)
	}
	return ret, nil
}

// newLogWriter writes to stderr in the requested format, and additionally to
// a rotated plain-text file when LogFile is set.
func newLogWriter(config *logConfig, stderr io.Writer) (io.Writer, error) {
	var ret io.Writer
	switch config.LogFormat {
	case "", "text":
		ret = zerolog.ConsoleWriter{Out: stderr}
	case "json":
		ret = stderr
	default:
		return nil, errors.Errorf("invalid --log-format %q (text, json)", config.LogFormat)
	}

	if config.LogFile == "" {
		return ret, nil
	}
	return io.MultiWriter(
		ret,
		zerolog.ConsoleWriter{
			NoColor: true,
			Out: &lumberjack.Logger{
				Filename:   config.LogFile,
				MaxSize:    logFileMaxSizeMB,
				MaxBackups: logFileMaxBackups,
				MaxAge:     logFileMaxAgeDays,
			},
		},
	), nil
}

func InitLogger(config *logConfig) error {
	level, err := parseLogLevel(config.Level)
	if err != nil {
		return err
	}
	w, err := newLogWriter(config, os.Stderr)
	if err != nil {
		return err
	}

	ctx := zerolog.New(w).With().Timestamp()
	if config.WithCaller {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	zerolog.SetGlobalLevel(level)

	return nil
}
