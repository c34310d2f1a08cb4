package logger

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions configures rotating file output
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 3
	defaultMaxAgeDays = 28
)

func newRotatingWriter(opts *FileOptions) io.Writer {
	size := opts.MaxSizeMB
	if size <= 0 {
		size = defaultMaxSizeMB
	}
	backups := opts.MaxBackups
	if backups <= 0 {
		backups = defaultMaxBackups
	}
	age := opts.MaxAgeDays
	if age <= 0 {
		age = defaultMaxAgeDays
	}
	return &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    size,
		MaxBackups: backups,
		MaxAge:     age,
		Compress:   opts.Compress,
	}
}
