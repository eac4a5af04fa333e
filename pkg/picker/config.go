// Package picker 配置定义
package picker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/clock"
	"github.com/Kevin-Rudy/gorange/pkg/core"
)

// NudgePolicy 方向平移后周期标识符的处理策略
type NudgePolicy string

const (
	// NudgeKeepPeriod 保留原有周期标识符（预设仍保持高亮）
	NudgeKeepPeriod NudgePolicy = "keep"
	// NudgeMarkCustom 平移后标记为custom
	NudgeMarkCustom NudgePolicy = "custom"
)

// IsValid 判断策略是否有效
func (p NudgePolicy) IsValid() bool {
	return p == NudgeKeepPeriod || p == NudgeMarkCustom
}

// Config Picker组件的配置结构
type Config struct {
	Debounce    time.Duration // 通知合并窗口
	NudgePolicy NudgePolicy   // 方向平移策略
	Fragment    string        // 启动时的URL片段

	Scheduler core.Scheduler      // 定时任务调度器
	Store     core.PeriodStore    // 默认周期存储，可为nil
	Writer    core.FragmentWriter // URL片段写入器，可为nil
	OnChange  core.ChangeFunc     // 状态变更回调，可为nil
	Logger    *slog.Logger        // 日志
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Debounce:    5 * time.Millisecond, // 默认5ms合并窗口
		NudgePolicy: NudgeKeepPeriod,
		Scheduler:   clock.Real{},
		Logger:      slog.New(slog.DiscardHandler),
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.Debounce <= 0 {
		return errors.New("通知合并窗口必须大于0")
	}

	if c.Debounce > time.Second {
		return errors.New("通知合并窗口不能超过1s")
	}

	if !c.NudgePolicy.IsValid() {
		return fmt.Errorf("未知的平移策略: %q", c.NudgePolicy)
	}

	if c.Scheduler == nil {
		return errors.New("调度器不能为空")
	}

	if c.Logger == nil {
		return errors.New("日志不能为空")
	}

	return nil
}
