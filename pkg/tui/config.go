// Package tui 配置定义
package tui

import (
	"errors"
	"time"
)

// Config TUI组件的配置结构
type Config struct {
	RefreshInterval     time.Duration // 状态栏刷新间隔
	NavigationThreshold int           // 连续平移多少次后进入休息
	NavigationRest      time.Duration // 平移休息时长
	DateLayout          string        // 日期显示格式
	FeedBuffer          int           // 状态变更通道缓冲区大小
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval:     time.Second,            // 默认每秒刷新状态栏
		NavigationThreshold: 5,                      // 5次平移后休息
		NavigationRest:      100 * time.Millisecond, // 休息100ms
		DateLayout:          "2006-01-02",
		FeedBuffer:          16,
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return errors.New("状态栏刷新间隔必须大于0")
	}

	if c.RefreshInterval < 10*time.Millisecond {
		return errors.New("状态栏刷新间隔不能小于10ms")
	}

	if c.NavigationThreshold <= 0 {
		return errors.New("平移阈值必须大于0")
	}

	if c.NavigationRest < 0 {
		return errors.New("平移休息时长不能为负数")
	}

	if c.DateLayout == "" {
		return errors.New("日期格式不能为空")
	}

	if c.FeedBuffer <= 0 {
		return errors.New("状态变更通道缓冲区大小必须大于0")
	}

	return nil
}
