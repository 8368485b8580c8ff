package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	File       string // Log file path; empty logs to stderr only
	MaxSize    int    // Max size in megabytes
	MaxBackups int    // Max number of backups
	MaxAge     int    // Max age in days
	Compress   bool   // Compress backups
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func DefaultConfig() Config {
	return Config{
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}
}

// Setup points the standard logger at stderr and, when a file is
// configured, at a rotating log file as well. prefix tags every line,
// typically with the run id. The returned closer releases the file.
func Setup(config Config, prefix string) (io.Closer, error) {
	log.SetPrefix(prefix)

	if config.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(config.File), 0755); err != nil {
		return nil, err
	}

	logger := &lumberjack.Logger{
		Filename:   config.File,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}

	multiWriter := io.MultiWriter(os.Stderr, logger)
	log.SetOutput(multiWriter)

	return logger, nil
}
