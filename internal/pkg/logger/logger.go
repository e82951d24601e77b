// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Init 初始化进程级的基础 logger，并设为 zerolog 的默认上下文 logger。
func Init(serviceName, level string) zerolog.Logger {
	return InitWithWriter(os.Stdout, serviceName, level)
}

func InitWithWriter(w io.Writer, serviceName, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	l := zerolog.New(w).Level(lvl).With().Timestamp().Str("service", serviceName).Logger()
	zerolog.DefaultContextLogger = &l
	return l
}

// Ctx 返回绑定在 ctx 上的 logger；存在活跃 span 时附加 trace_id 和 span_id。
func Ctx(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	traced := l.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
	return &traced
}
