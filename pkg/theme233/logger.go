package theme233

import (
	"sync/atomic"

	"github.com/go-logr/logr"
)

// Logger 日志接口，基于 logr
// 用户可以注入不同的日志实现（如 zap, zerolog, funcr 等）
type Logger = logr.Logger

var globalLogger atomic.Pointer[Logger]

// SetLogger 设置全局日志实现
// 注入过程中的调试信息使用 V(1) 输出，重载与扩展包安装使用 Info 输出
func SetLogger(logger Logger) {
	globalLogger.Store(&logger)
}

// getLogger 获取当前日志实现
// 如果未设置，使用默认的 logr.Discard()（不输出日志）
func getLogger() Logger {
	l := globalLogger.Load()
	if l == nil || l.IsZero() {
		return logr.Discard()
	}
	return l.WithName("theme233")
}
