package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"hearing_reminder_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Init configures it once at startup.
var Log = logrus.New()

// Options select how log lines are written.
type Options struct {
	Level       string
	Environment string
	Output      io.Writer
}

// OptionsFrom maps the application config onto logger options. Output is stdout.
func OptionsFrom(cfg *config.AppConfig) Options {
	return Options{Level: cfg.LogLevel, Environment: cfg.Environment, Output: os.Stdout}
}

// New returns a logger configured by opts. An unknown level leaves the logger
// at info and is reported as the error.
func New(opts Options) (*logrus.Logger, error) {
	l := logrus.New()
	err := apply(l, opts)
	return l, err
}

// Init configures Log from cfg.
func Init(cfg *config.AppConfig) {
	opts := OptionsFrom(cfg)
	if err := apply(Log, opts); err != nil {
		Log.WithError(err).Warn("Falling back to info level")
	}
	Log.WithFields(logrus.Fields{
		"level":       Log.GetLevel().String(),
		"environment": opts.Environment,
	}).Debug("Logger ready")
}

// Component returns an entry of Log tagged with the component name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

func apply(l *logrus.Logger, opts Options) error {
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	}
	l.SetFormatter(formatterFor(opts.Environment))

	hooks := make(logrus.LevelHooks)
	if structured(opts.Environment) {
		hooks.Add(staticFields{"environment": opts.Environment})
	}
	l.ReplaceHooks(hooks)

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		l.SetLevel(logrus.InfoLevel)
		return fmt.Errorf("log level %q: %w", opts.Level, err)
	}
	l.SetLevel(level)
	return nil
}

// structured reports whether lines are shipped to a collector rather than
// read on a terminal.
func structured(environment string) bool {
	return environment == "production" || environment == "staging"
}

func formatterFor(environment string) logrus.Formatter {
	if structured(environment) {
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap:        logrus.FieldMap{logrus.FieldKeyMsg: "message"},
		}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	}
}

// staticFields stamps every entry with fixed fields unless the entry already
// carries them.
type staticFields logrus.Fields

func (f staticFields) Levels() []logrus.Level { return logrus.AllLevels }

func (f staticFields) Fire(e *logrus.Entry) error {
	for k, v := range f {
		if _, ok := e.Data[k]; !ok {
			e.Data[k] = v
		}
	}
	return nil
}
