package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gowvp/owlview/internal/conf"
	"github.com/ixugo/goddd/pkg/system"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// SetupLog 日志同时输出到控制台与按时间切割的文件
func SetupLog(bc *conf.Bootstrap) (*slog.Logger, func(), error) {
	level := parseLevel(bc.Log.Level)
	if bc.Debug {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stdout
	clean := func() {}
	if bc.Log.Dir != "" {
		dir := bc.Log.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(system.Getwd(), dir)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
		opts := []rotatelogs.Option{
			rotatelogs.WithLinkName(filepath.Join(dir, "owlview.log")),
			rotatelogs.WithMaxAge(bc.Log.MaxAge.Duration()),
			rotatelogs.WithRotationTime(bc.Log.RotationTime.Duration()),
		}
		if bc.Log.RotationSize > 0 {
			opts = append(opts, rotatelogs.WithRotationSize(bc.Log.RotationSize*1024*1024))
		}
		r, err := rotatelogs.New(filepath.Join(dir, "%Y%m%d_%H%M%S.log"), opts...)
		if err != nil {
			return nil, nil, err
		}
		w = io.MultiWriter(os.Stdout, r)
		clean = func() { _ = r.Close() }
	}

	log := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: bc.Debug,
		Level:     level,
	}))
	return log, clean, nil
}

// parseLevel 无法识别时使用 info
func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
