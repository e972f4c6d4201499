// Package logging builds the per-component loggers used across IdeaSpark.
//
// Every component gets a standard *log.Logger with a bracketed prefix
// ("[store] ", "[ideas] ", ...). All of them write to one shared sink: a
// size-rotated log file when one is configured, plus stderr in verbose mode.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the shared sink.
type Options struct {
	// File is the log file path. Empty disables file logging.
	File string
	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int
	// MaxBackups is how many rotated files are kept.
	MaxBackups int
	// MaxAgeDays removes rotated files older than this (0 = keep).
	MaxAgeDays int
	// Verbose also copies log output to Stderr.
	Verbose bool
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
}

// Sink is the destination shared by every component logger.
type Sink struct {
	out  io.Writer
	file *lumberjack.Logger

	mu      sync.Mutex
	loggers map[string]*log.Logger
}

// Setup creates the sink. With no file and no verbose flag, output is
// discarded.
func Setup(opts Options) (*Sink, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	s := &Sink{loggers: make(map[string]*log.Logger)}
	var writers []io.Writer

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, err
		}
		s.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
		writers = append(writers, s.file)
	}
	if opts.Verbose {
		writers = append(writers, stderr)
	}

	switch len(writers) {
	case 0:
		s.out = io.Discard
	case 1:
		s.out = writers[0]
	default:
		s.out = io.MultiWriter(writers...)
	}
	return s, nil
}

// Discard returns a sink that drops everything.
func Discard() *Sink {
	return &Sink{out: io.Discard, loggers: make(map[string]*log.Logger)}
}

// Logger returns the logger for component, creating it on first use.
func (s *Sink) Logger(component string) *log.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.loggers[component]; ok {
		return l
	}
	l := log.New(s.out, "["+component+"] ", log.LstdFlags)
	s.loggers[component] = l
	return l
}

// Writer returns the underlying writer.
func (s *Sink) Writer() io.Writer {
	return s.out
}

// Close closes the log file, if any.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
