package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerSetupParams struct {
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
}

func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.SetLevel(GetLevel(params.LogLevel))

	if params.LogFileName == "" {
		log.SetOutput(os.Stdout)
		log.Println("writing logs only to STDOUT")
		return
	}

	if !strings.HasSuffix(params.LogFileName, ".log") {
		params.LogFileName += ".log"
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:  params.LogFileName,
		MaxSize:   50, // megabytes
		LocalTime: false,
		Compress:  true,
	}

	if params.LogToStdout {
		log.SetOutput(io.MultiWriter(os.Stdout, lumberJackLogger))
		log.Println("writing logs to file and STDOUT")
	} else {
		log.SetOutput(lumberJackLogger)
	}
}

func GetLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	case "info":
		return log.InfoLevel
	case "trace":
		return log.TraceLevel
	case "warn":
		return log.WarnLevel
	default:
		return log.InfoLevel
	}
}

// GinLogger writes one entry per request in place of gin's default logger.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Warn(c.Errors.String())
			return
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Info("request rejected")
		default:
			entry.Debug("request served")
		}
	}
}
