package log

import "go.uber.org/atomic"

var (
	_ WithLogger   = &Binder{}
	_ LoggerBinder = &Binder{}
)

// WithLogger 暴露组件当前使用的 Logger。
type WithLogger interface {
	Logger() *MLogger
}

// LoggerBinder 允许外部为组件注入 Logger。
type LoggerBinder interface {
	SetLogger(logger *MLogger)
}

// Binder 供长生命周期组件（如 stream.Reader）内嵌，
// 统一持有带组件标签的 Logger。
//
// 说明：
//   - 读写使用原子指针，允许运行期替换 Logger；
//   - 未绑定时退回全局 Logger，组件无需判空。
type Binder struct {
	logger atomic.Pointer[MLogger]
}

// SetLogger 将 logger 绑定到组件上，覆盖之前的绑定。
func (w *Binder) SetLogger(logger *MLogger) {
	w.logger.Store(logger)
}

// Logger 返回当前绑定的 Logger，未绑定时返回全局 Logger。
func (w *Binder) Logger() *MLogger {
	l := w.logger.Load()
	if l == nil {
		return With()
	}
	return l
}
