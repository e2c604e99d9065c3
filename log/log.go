// Package log writes structured logs to a per-day file under the logs
// directory. When log writing is disabled every call is a no-op.
package log

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/duocast-cli/duocast/filesystem"
	"github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var logger = logrus.New()

var enabled bool

// Setup opens today's log file and configures formatting and the severity
// threshold from the user's configuration.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		logger.SetFormatter(&logrus.JSONFormatter{PrettyPrint: true})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	lvl, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return nil
}

// AddHook registers a logrus hook on the shared logger. Hooks fire for
// every emission regardless of the configured output.
func AddHook(hook logrus.Hook) {
	logger.AddHook(hook)
}

func Panic(args ...interface{}) {
	if enabled {
		logger.Panic(args...)
	}
}

func Panicf(format string, args ...interface{}) {
	if enabled {
		logger.Panicf(format, args...)
	}
}

func Fatal(args ...interface{}) {
	if enabled {
		logger.Fatal(args...)
	}
}

func Fatalf(format string, args ...interface{}) {
	if enabled {
		logger.Fatalf(format, args...)
	}
}

func Error(args ...interface{}) {
	if enabled {
		logger.Error(args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if enabled {
		logger.Errorf(format, args...)
	}
}

func Warn(args ...interface{}) {
	if enabled {
		logger.Warn(args...)
	}
}

func Warnf(format string, args ...interface{}) {
	if enabled {
		logger.Warnf(format, args...)
	}
}

func Info(args ...interface{}) {
	if enabled {
		logger.Info(args...)
	}
}

func Infof(format string, args ...interface{}) {
	if enabled {
		logger.Infof(format, args...)
	}
}

func Debug(args ...interface{}) {
	if enabled {
		logger.Debug(args...)
	}
}

func Debugf(format string, args ...interface{}) {
	if enabled {
		logger.Debugf(format, args...)
	}
}

func Trace(args ...interface{}) {
	if enabled {
		logger.Trace(args...)
	}
}

func Tracef(format string, args ...interface{}) {
	if enabled {
		logger.Tracef(format, args...)
	}
}
