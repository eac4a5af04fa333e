// Package tui 选项模式支持
package tui

import (
	"time"
)

// Option TUI配置选项函数类型
type Option func(*Config)

// WithRefreshInterval 设置状态栏刷新间隔
func WithRefreshInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.RefreshInterval = interval
	}
}

// WithNavigationThrottle 设置平移频率控制
func WithNavigationThrottle(threshold int, rest time.Duration) Option {
	return func(c *Config) {
		c.NavigationThreshold = threshold
		c.NavigationRest = rest
	}
}

// WithDateLayout 设置日期显示格式
func WithDateLayout(layout string) Option {
	return func(c *Config) {
		c.DateLayout = layout
	}
}

// NewConfigWithOptions 使用选项模式创建TUI配置
func NewConfigWithOptions(opts ...Option) *Config {
	config := DefaultConfig()

	// 应用所有选项
	for _, opt := range opts {
		opt(config)
	}

	return config
}
