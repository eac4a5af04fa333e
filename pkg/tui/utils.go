// Package tui 工具函数和辅助类型
package tui

import (
	"fmt"

	"github.com/Kevin-Rudy/gorange/pkg/core"
	"github.com/Kevin-Rudy/gorange/pkg/period"
)

// formatSpan 将区间天数格式化为可读文本
// diff 为结束日期减开始日期，实际覆盖 diff+1 天
func formatSpan(diff int) string {
	days := diff + 1
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// presetForRune 根据数字键返回对应的预设周期
func presetForRune(r rune) (core.Period, bool) {
	idx := int(r - '1')
	entries := period.Entries()
	if idx < 0 || idx >= len(entries) {
		return "", false
	}
	return entries[idx].Token, true
}

// granularityForRune 根据快捷键返回粒度，仅当该粒度对当前区间可用
func granularityForRune(r rune, diff int) (core.Granularity, bool) {
	for _, g := range period.AvailableGranularities(diff) {
		if granularityLabels[g].key == r {
			return g, true
		}
	}
	return "", false
}
