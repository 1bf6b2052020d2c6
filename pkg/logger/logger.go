package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/edubuild-api/pkg/config"
	"github.com/noah-isme/edubuild-api/pkg/middleware/requestid"
)

const serviceName = "edubuild-api"

func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Log.Format {
	case "console":
		zapCfg.Encoding = "console"
	default:
		zapCfg.Encoding = "json"
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.InitialFields = map[string]interface{}{"service": serviceName, "env": cfg.Env}

	return zapCfg.Build()
}

func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		reqID := requestid.Value(c)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		}
		if reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if status >= 500 {
			l.Error("http_request", fields...)
			return
		}
		l.Info("http_request", fields...)
	}
}

// GooseLogger adapts zap to the logger interface expected by goose.
type GooseLogger struct {
	sugar *zap.SugaredLogger
}

// NewGooseLogger wraps l for migration output.
func NewGooseLogger(l *zap.Logger) *GooseLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &GooseLogger{sugar: l.Named("migrations").Sugar()}
}

// Printf logs migration progress at info level.
func (g *GooseLogger) Printf(format string, v ...interface{}) {
	g.sugar.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs and exits; goose only calls it on unrecoverable states.
func (g *GooseLogger) Fatalf(format string, v ...interface{}) {
	g.sugar.Fatal(fmt.Sprintf(format, v...))
}
