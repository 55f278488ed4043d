package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const LOG_BUFFER_SIZE = 1000

var ErrLogNotInitialized = errors.New("log object is not initialized yet")

const (
	LOG_LEVEL_ERROR = iota + 1
	LOG_LEVEL_WARN
	LOG_LEVEL_INFO
	LOG_LEVEL_DEBUG
)

// Logger queues leveled messages and writes them from a single goroutine
// to a log file and to stderr.
type Logger struct {
	logBuffer         chan leveledMessage
	handle            *os.File
	wg                *sync.WaitGroup
	mu                sync.RWMutex
	loggerInitialized bool
	level             int
	zapLogger         *zap.Logger
}

type leveledMessage struct {
	level  int
	logMsg string
}

// Init opens logDir/logFileName (creating logDir if needed) and starts the writer.
func (l *Logger) Init(logDir, logFileName string, level int, rewrite bool) error {
	var err error

	CheckAndCreateLogFolder(logDir)

	flags := os.O_RDWR | os.O_CREATE | os.O_APPEND
	if rewrite {
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	l.handle, err = os.OpenFile(filepath.Join(logDir, logFileName), flags, 0666)
	if err != nil {
		return err
	}

	l.level = level
	l.wg = new(sync.WaitGroup)
	l.logBuffer = make(chan leveledMessage, LOG_BUFFER_SIZE)
	l.zapLoggerInit()

	l.wg.Add(1)
	go l.logWriter()

	l.mu.Lock()
	l.loggerInitialized = true
	l.mu.Unlock()
	return nil
}

func (l *Logger) zapLoggerInit() {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(config)

	zapLevel := ZapLevel(l.level)
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(l.handle), zapLevel),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapLevel),
	)
	l.zapLogger = zap.New(core)
}

// ZapLevel maps LOG_LEVEL_* onto zap levels. Unknown values fall back to info.
func ZapLevel(level int) zapcore.Level {
	switch level {
	case LOG_LEVEL_ERROR:
		return zapcore.ErrorLevel
	case LOG_LEVEL_WARN:
		return zapcore.WarnLevel
	case LOG_LEVEL_DEBUG:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) logWriter() {
	for msg := range l.logBuffer {
		switch msg.level {
		case LOG_LEVEL_ERROR:
			l.zapLogger.Error(msg.logMsg)
		case LOG_LEVEL_WARN:
			l.zapLogger.Warn(msg.logMsg)
		case LOG_LEVEL_DEBUG:
			l.zapLogger.Debug(msg.logMsg)
		default:
			l.zapLogger.Info(msg.logMsg)
		}
	}
	_ = l.zapLogger.Sync()
	l.wg.Done()
}

// LogEvent accepts either a single message (logged at info) or a LOG_LEVEL_*
// followed by the values making up the message.
func (l *Logger) LogEvent(v ...interface{}) error {
	level := LOG_LEVEL_INFO
	var msg string

	switch {
	case len(v) == 1:
		msg = fmt.Sprint(v[0])
	case len(v) > 1:
		if lvl, ok := v[0].(int); ok && lvl >= LOG_LEVEL_ERROR && lvl <= LOG_LEVEL_DEBUG {
			level = lvl
			msg = fmt.Sprintln(v[1:]...)
		} else {
			msg = fmt.Sprintln(v...)
		}
		msg = msg[:len(msg)-1]
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.loggerInitialized {
		return ErrLogNotInitialized
	}
	l.logBuffer <- leveledMessage{level, msg}
	return nil
}

// Println lets the logger serve as promhttp's ErrorLog.
func (l *Logger) Println(v ...interface{}) {
	l.LogEvent(append([]interface{}{LOG_LEVEL_ERROR}, v...)...)
}

// DeInit drains the buffer and closes the log file.
func (l *Logger) DeInit() {
	l.mu.Lock()
	if !l.loggerInitialized {
		l.mu.Unlock()
		return
	}
	l.loggerInitialized = false
	close(l.logBuffer)
	l.mu.Unlock()

	l.wg.Wait()
	l.handle.Close()
}

func CheckAndCreateLogFolder(folderNameWithPath string) {
	_, err := os.Stat(folderNameWithPath)

	if os.IsNotExist(err) {
		err := os.MkdirAll(folderNameWithPath, 0755)
		if err != nil {
			fmt.Println("Failed to create the log folder and Mkdir err :: ", err)
		}
	}
}
