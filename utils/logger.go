package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogConfig struct {
	Level string
	File  string
	JSON  bool
}

// InitLogger builds the process logger and installs it as the default
// charmbracelet logger. When File is set, output is mirrored to a rotating
// log file.
func InitLogger(cfg LogConfig) (*log.Logger, error) {
	var writer io.Writer = os.Stderr
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, err
		}
		writer = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}

	logger := log.NewWithOptions(writer, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level == log.DebugLevel,
		Level:           level,
		Prefix:          "atomichabits",
	})
	if cfg.JSON {
		logger.SetFormatter(log.JSONFormatter)
	}

	log.SetDefault(logger)
	return logger, nil
}
