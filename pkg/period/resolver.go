// Package period 区间解析模块
package period

import (
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/core"
)

// Resolve 将周期标识符解析为规范化的日期区间
// 未知标识符（包括custom）回退到1w，返回实际使用的标识符
// 时钟只读取一次，开始和结束使用同一个时刻
func Resolve(token core.Period, clock core.Clock) (core.Period, core.DateRange) {
	return ResolveAt(token, clock.Now())
}

// ResolveAt 基于给定时刻解析周期
func ResolveAt(token core.Period, now time.Time) (core.Period, core.DateRange) {
	def, ok := Lookup(token)
	if !ok {
		token = core.DefaultPeriod
		def, _ = Lookup(token)
	}

	return token, Normalize(core.DateRange{
		Start: def.Start(now),
		End:   def.End(now),
	})
}

// Normalize 将开始时间置为当天00:00:00.000，结束时间置为当天23:59:59.000
func Normalize(r core.DateRange) core.DateRange {
	return core.DateRange{
		Start: StartOfDay(r.Start),
		End:   EndOfDay(r.End),
	}
}

// StartOfDay 返回当天零点
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay 返回当天23:59:59（毫秒归零）
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// Diff 计算区间跨越的整天数
// 按日历日期相减，不受夏令时切换影响
// 规范化区间的结果即为 end日期 - start日期（1w 为 6，三月的mtd 为 30）
func Diff(r core.DateRange) int {
	return civilDay(r.End) - civilDay(r.Start)
}

// civilDay 返回日历日期对应的绝对天数（以时间值自身的时区解释日期）
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// Shift 将区间整体平移若干个日历天
func Shift(r core.DateRange, days int) core.DateRange {
	return core.DateRange{
		Start: r.Start.AddDate(0, 0, days),
		End:   r.End.AddDate(0, 0, days),
	}
}
