// Package period 提供周期目录、区间解析和聚合粒度推断
// 所有函数都是纯函数，时间参考点通过参数显式传入
package period

import (
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/core"
)

// Definition 周期定义
// Start 和 End 只依赖传入的当前时间
type Definition struct {
	Label string
	Start func(now time.Time) time.Time
	End   func(now time.Time) time.Time
}

// Entry 目录中的有序条目
type Entry struct {
	Token      core.Period
	Definition Definition
}

// allAnchor 全部数据的起点（2018年7月1日）
var allAnchor = struct {
	year  int
	month time.Month
	day   int
}{2018, time.July, 1}

// today 返回当天零点（按now所在时区的日历）
func today(now time.Time) time.Time {
	return dayOffset(now, 0)
}

// dayOffset 返回相对今天偏移若干天的零点
func dayOffset(now time.Time, days int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, now.Location())
}

// quarterStartMonth 计算当前季度的起始月份
// 以0为起点的月份为 ceil((month0+1)/3)*3-3，等价于 (month0/3)*3
func quarterStartMonth(now time.Time) time.Month {
	month0 := int(now.Month()) - 1
	return time.Month(month0/3*3 + 1)
}

// catalog 有序目录，顺序即展示顺序
var catalog = []Entry{
	{
		Token: core.PeriodDay,
		Definition: Definition{
			Label: "1d",
			Start: today,
			End:   today,
		},
	},
	{
		Token: core.PeriodWeek,
		Definition: Definition{
			Label: "1w",
			Start: func(now time.Time) time.Time { return dayOffset(now, -6) },
			End:   today,
		},
	},
	{
		Token: core.PeriodFourWk,
		Definition: Definition{
			Label: "4w",
			Start: func(now time.Time) time.Time { return dayOffset(now, -4*7+1) },
			End:   today,
		},
	},
	{
		Token: core.PeriodMonth,
		Definition: Definition{
			Label: "Mtd",
			Start: func(now time.Time) time.Time {
				return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
			},
			End: func(now time.Time) time.Time {
				// 下个月的第0天即本月最后一天
				return time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location())
			},
		},
	},
	{
		Token: core.PeriodQuarter,
		Definition: Definition{
			Label: "Qtd",
			Start: func(now time.Time) time.Time {
				return time.Date(now.Year(), quarterStartMonth(now), 1, 0, 0, 0, 0, now.Location())
			},
			End: func(now time.Time) time.Time {
				return time.Date(now.Year(), quarterStartMonth(now)+3, 0, 0, 0, 0, 0, now.Location())
			},
		},
	},
	{
		Token: core.PeriodYear,
		Definition: Definition{
			Label: "Ytd",
			Start: func(now time.Time) time.Time {
				return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
			},
			End: func(now time.Time) time.Time {
				return time.Date(now.Year()+1, time.January, 0, 0, 0, 0, 0, now.Location())
			},
		},
	},
	{
		Token: core.PeriodAll,
		Definition: Definition{
			Label: "All",
			Start: func(now time.Time) time.Time {
				return time.Date(allAnchor.year, allAnchor.month, allAnchor.day, 0, 0, 0, 0, now.Location())
			},
			End: func(now time.Time) time.Time {
				return now
			},
		},
	},
}

// Lookup 查找周期定义，custom 和未知标识符返回 false
func Lookup(token core.Period) (Definition, bool) {
	for _, e := range catalog {
		if e.Token == token {
			return e.Definition, true
		}
	}
	return Definition{}, false
}

// Entries 返回目录条目的副本，顺序固定
func Entries() []Entry {
	entries := make([]Entry, len(catalog))
	copy(entries, catalog)
	return entries
}
