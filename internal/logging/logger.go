package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/2beens/fittrack/pkg"
)

const (
	rotateMaxSizeMB  = 20
	rotateMaxBackups = 10
	rotateMaxAgeDays = 90
)

type LoggerSetupParams struct {
	// LogFileName is rotated with lumberjack; empty means console only.
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
	// Console defaults to os.Stdout. The stdio MCP server passes os.Stderr.
	Console          io.Writer
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// Setup configures the global logrus logger.
func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.SentryEnabled {
		setupSentry(params)
	}

	out, description := output(params)
	logrus.SetOutput(out)
	logrus.Debugf("writing logs to %s", description)
}

func setupSentry(params LoggerSetupParams) {
	if err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 1.0,
		ServerName:       params.SentryServerName,
	}); err != nil {
		logrus.Errorf("sentry init: %s", err)
		return
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infof("sentry enabled for [%s]", params.Environment)
}

// output picks the log writer and describes it for the startup log line.
func output(params LoggerSetupParams) (io.Writer, string) {
	console := params.Console
	if console == nil {
		console = os.Stdout
	}

	if params.LogFileName == "" {
		return console, "console"
	}

	fileName := params.LogFileName
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}
	if err := pkg.EnsureDir(filepath.Dir(fileName)); err != nil {
		logrus.Errorf("create logs dir for %s: %s", fileName, err)
	}

	rotating := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    rotateMaxSizeMB,
		MaxBackups: rotateMaxBackups,
		MaxAge:     rotateMaxAgeDays,
		Compress:   true,
	}

	if params.LogToStdout {
		return pkg.NewCombinedWriter(console, rotating), fileName + " and console"
	}
	return rotating, fileName
}

// GetLevel parses a config log level; anything unrecognized logs everything.
func GetLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.TraceLevel
	}
	return parsed
}
