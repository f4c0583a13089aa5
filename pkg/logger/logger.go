package logger

import (
	"os"
	"seclink_backend/internal/config"

	"github.com/rollbar/rollbar-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 在 InitLogger 之前为 Nop，测试中可直接使用
var Log = zap.NewNop()

func InitLogger(cfg *config.Config) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   "logs/app.log",
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	consoleWriter := zapcore.AddSync(os.Stdout)

	level := zap.InfoLevel
	if cfg.Server.Mode == "debug" {
		level = zap.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			fileWriter,
			level,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			consoleWriter,
			level,
		),
	)

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)}
	if cfg.Rollbar.Token != "" {
		initRollbar(cfg)
		opts = append(opts, zap.Hooks(rollbarHook))
	}

	Log = zap.New(core, opts...)
}

func initRollbar(cfg *config.Config) {
	env := cfg.Rollbar.Environment
	if env == "" {
		env = cfg.Server.Mode
	}
	rollbar.SetToken(cfg.Rollbar.Token)
	rollbar.SetEnvironment(env)
	rollbar.SetEnabled(true)
}

// rollbarHook 将 error 及以上级别的日志上报到 Rollbar
func rollbarHook(entry zapcore.Entry) error {
	switch {
	case entry.Level >= zapcore.FatalLevel:
		rollbar.Critical(entry.Message, map[string]interface{}{"caller": entry.Caller.TrimmedPath()})
	case entry.Level >= zapcore.ErrorLevel:
		rollbar.Error(entry.Message, map[string]interface{}{"caller": entry.Caller.TrimmedPath()})
	}
	return nil
}

// Sync 刷新缓冲区，同时等待 Rollbar 队列发送完成
func Sync() {
	_ = Log.Sync()
	rollbar.Wait()
}
