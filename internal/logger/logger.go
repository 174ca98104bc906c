package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*logrus.Logger
	fileLogger *logrus.Logger
}

var defaultLogger *Logger

func init() {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		logrus.Errorf("无法创建日志目录: %v", err)
	}

	// 使用lumberjack进行日志轮转
	defaultLogger = newLogger(os.Stderr, &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "room-client.log"),
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	})
}

// newLogger 控制台写 console，标准输出留给终端界面；JSON 文件日志写 file
func newLogger(console, file io.Writer) *Logger {
	consoleLogger := logrus.New()
	consoleLogger.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	consoleLogger.SetOutput(console)
	consoleLogger.SetLevel(logrus.InfoLevel)

	fileLogger := logrus.New()
	fileLogger.SetFormatter(&logrus.JSONFormatter{
		PrettyPrint:     false,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	fileLogger.SetOutput(file)
	fileLogger.SetLevel(logrus.DebugLevel)

	return &Logger{
		Logger:     consoleLogger,
		fileLogger: fileLogger,
	}
}

// SetVerbose 打开控制台调试日志
func SetVerbose(verbose bool) {
	if verbose {
		defaultLogger.Logger.SetLevel(logrus.DebugLevel)
	} else {
		defaultLogger.Logger.SetLevel(logrus.InfoLevel)
	}
}

func Infof(format string, args ...any) {
	defaultLogger.Logger.Infof(format, args...)
	defaultLogger.fileLogger.Infof(format, args...)
}

func Warnf(format string, args ...any) {
	defaultLogger.Logger.Warnf(format, args...)
	defaultLogger.fileLogger.Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	defaultLogger.Logger.Errorf(format, args...)
	defaultLogger.fileLogger.Errorf(format, args...)
}

func Fatalf(format string, args ...any) {
	defaultLogger.fileLogger.Errorf(format, args...)
	defaultLogger.Logger.Fatalf(format, args...)
}

func Debugf(format string, args ...any) {
	defaultLogger.Logger.Debugf(format, args...)
	defaultLogger.fileLogger.Debugf(format, args...)
}

// ComponentLogger 控制台消息带 [name] 前缀，文件日志带 component 字段
type ComponentLogger struct {
	name   string
	prefix string
	logger *Logger
}

func Component(name string) *ComponentLogger {
	return defaultLogger.component(name)
}

func (l *Logger) component(name string) *ComponentLogger {
	return &ComponentLogger{name: name, prefix: "[" + name + "] ", logger: l}
}

func (c *ComponentLogger) file() *logrus.Entry {
	return c.logger.fileLogger.WithField("component", c.name)
}

func (c *ComponentLogger) Infof(format string, args ...any) {
	c.logger.Logger.Infof(c.prefix+format, args...)
	c.file().Infof(format, args...)
}

func (c *ComponentLogger) Warnf(format string, args ...any) {
	c.logger.Logger.Warnf(c.prefix+format, args...)
	c.file().Warnf(format, args...)
}

func (c *ComponentLogger) Errorf(format string, args ...any) {
	c.logger.Logger.Errorf(c.prefix+format, args...)
	c.file().Errorf(format, args...)
}

func (c *ComponentLogger) Debugf(format string, args ...any) {
	c.logger.Logger.Debugf(c.prefix+format, args...)
	c.file().Debugf(format, args...)
}
