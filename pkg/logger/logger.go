package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level уровень логирования
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel парсит уровень логирования из строки конфигурации
// Неизвестные значения трактуются как info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger простой уровневый логгер с printf-форматированием
// Пишет в файл, если путь указан, иначе в stdout
type Logger struct {
	std   *log.Logger
	level Level
	file  *os.File
}

// New создает логгер. Если filePath пустой, логи пишутся в stdout
func New(filePath string, level string) (*Logger, error) {
	var out io.Writer = os.Stdout
	var file *os.File

	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logger: failed to open log file %s: %w", filePath, err)
		}
		out = io.MultiWriter(os.Stdout, f)
		file = f
	}

	return &Logger{
		std:   log.New(out, "", log.LstdFlags|log.Lmicroseconds),
		level: ParseLevel(level),
		file:  file,
	}, nil
}

// Close закрывает файл логов (если использовался)
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) logf(level Level, prefix, format string, v ...interface{}) {
	if level < l.level {
		return
	}
	l.std.Printf(prefix+" "+format, v...)
}

// Debug пишет отладочное сообщение
func (l *Logger) Debug(format string, v ...interface{}) {
	l.logf(LevelDebug, "[DEBUG]", format, v...)
}

// Info пишет информационное сообщение
func (l *Logger) Info(format string, v ...interface{}) {
	l.logf(LevelInfo, "[INFO]", format, v...)
}

// Warn пишет предупреждение
func (l *Logger) Warn(format string, v ...interface{}) {
	l.logf(LevelWarn, "[WARN]", format, v...)
}

// Error пишет сообщение об ошибке
func (l *Logger) Error(format string, v ...interface{}) {
	l.logf(LevelError, "[ERROR]", format, v...)
}

// Fatal пишет сообщение об ошибке и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.logf(LevelError, "[FATAL]", format, v...)
	if l.file != nil {
		_ = l.file.Close()
	}
	os.Exit(1)
}
