// Package period 聚合粒度推断模块
package period

import (
	"github.com/Kevin-Rudy/gorange/pkg/core"
)

// 粒度切换阈值（天）
const (
	monthThreshold = 31 // 达到31天按月聚合
	hourThreshold  = 2  // 少于2天按小时聚合
)

// Infer 根据区间天数推断聚合粒度
// 显式指定的粒度总是优先
func Infer(diff int, explicit core.Granularity) core.Granularity {
	if explicit != "" {
		return explicit
	}

	switch {
	case diff >= monthThreshold:
		return core.GranularityMonth
	case diff < hourThreshold:
		return core.GranularityHour
	default:
		return core.GranularityDay
	}
}

// AvailableGranularities 返回当前区间可供选择的粒度
// 按天总是可选，按小时仅在31天以内可选，按月仅在31天及以上可选
func AvailableGranularities(diff int) []core.Granularity {
	if diff < monthThreshold {
		return []core.Granularity{core.GranularityHour, core.GranularityDay}
	}
	return []core.Granularity{core.GranularityDay, core.GranularityMonth}
}
