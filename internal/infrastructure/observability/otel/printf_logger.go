package otel

import (
	"context"
	"fmt"
	"strings"
)

// PrintfLogger 書式付きログをLoggerの構造化ログに流すアダプター
// resty.Loggerを満たす
type PrintfLogger struct {
	logger *Logger
	fields map[string]interface{}
}

// Printf componentを付けて書式付きログを出力するアダプターを返す
func (l *Logger) Printf(component string) *PrintfLogger {
	return &PrintfLogger{
		logger: l,
		fields: map[string]interface{}{"component": component},
	}
}

// Errorf Errorレベルで出力
func (p *PrintfLogger) Errorf(format string, v ...interface{}) {
	p.log(LogLevelError, format, v...)
}

// Warnf Warnレベルで出力
func (p *PrintfLogger) Warnf(format string, v ...interface{}) {
	p.log(LogLevelWarn, format, v...)
}

// Debugf Debugレベルで出力
func (p *PrintfLogger) Debugf(format string, v ...interface{}) {
	p.log(LogLevelDebug, format, v...)
}

func (p *PrintfLogger) log(level LogLevel, format string, v ...interface{}) {
	p.logger.Log(context.Background(), level, strings.TrimSpace(fmt.Sprintf(format, v...)), p.fields)
}
