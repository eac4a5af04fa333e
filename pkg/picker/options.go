// Package picker 选项模式支持
package picker

import (
	"log/slog"
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/core"
)

// Option 配置选项函数类型
type Option func(*Config)

// WithDebounce 设置通知合并窗口
func WithDebounce(d time.Duration) Option {
	return func(c *Config) {
		c.Debounce = d
	}
}

// WithNudgePolicy 设置方向平移策略
func WithNudgePolicy(policy NudgePolicy) Option {
	return func(c *Config) {
		c.NudgePolicy = policy
	}
}

// WithFragment 设置启动时的URL片段
func WithFragment(fragment string) Option {
	return func(c *Config) {
		c.Fragment = fragment
	}
}

// WithScheduler 设置调度器
func WithScheduler(s core.Scheduler) Option {
	return func(c *Config) {
		c.Scheduler = s
	}
}

// WithStore 设置默认周期存储
func WithStore(s core.PeriodStore) Option {
	return func(c *Config) {
		c.Store = s
	}
}

// WithFragmentWriter 设置URL片段写入器
func WithFragmentWriter(w core.FragmentWriter) Option {
	return func(c *Config) {
		c.Writer = w
	}
}

// WithOnChange 设置状态变更回调
func WithOnChange(fn core.ChangeFunc) Option {
	return func(c *Config) {
		c.OnChange = fn
	}
}

// WithLogger 设置日志
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
