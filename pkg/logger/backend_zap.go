package logger

import (
	"log/slog"
	"os"
	"time"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultSampleInitial    = 100
	defaultSampleThereafter = 10
)

func newZapHandler(cfg Config) slog.Handler {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if cfg.AddSource {
		encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(os.Stdout),
		toZapLevel(cfg.Level),
	)
	core = sampled(core, cfg)

	// AddCallerSkip(1): caller должен указывать на вызов slog, а не на обёртку
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return slogzap.Option{Logger: z}.NewZapHandler()
}

// sampled ограничивает всплески однотипных записей.
func sampled(core zapcore.Core, cfg Config) zapcore.Core {
	initial, thereafter := cfg.SampleInitial, cfg.SampleThereafter
	if initial <= 0 {
		initial = defaultSampleInitial
	}
	if thereafter <= 0 {
		thereafter = defaultSampleThereafter
	}
	return zapcore.NewSamplerWithOptions(core, time.Second, initial, thereafter)
}

func toZapLevel(lvl slog.Level) zapcore.Level {
	switch {
	case lvl <= slog.LevelDebug:
		return zapcore.DebugLevel
	case lvl <= slog.LevelInfo:
		return zapcore.InfoLevel
	case lvl <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
