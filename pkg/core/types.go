// Package core 定义了日期区间引擎的核心类型和接口
// 这些接口保证了引擎与时钟、存储、URL写入等外部协作者的完全解耦
package core

import (
	"time"
)

// Period 表示周期标识符（如 "1w"、"mtd"）
type Period string

const (
	PeriodDay     Period = "1d"     // 今天
	PeriodWeek    Period = "1w"     // 最近7天
	PeriodFourWk  Period = "4w"     // 最近28天
	PeriodMonth   Period = "mtd"    // 本月
	PeriodQuarter Period = "qtd"    // 本季度
	PeriodYear    Period = "ytd"    // 本年
	PeriodAll     Period = "all"    // 全部
	PeriodCustom  Period = "custom" // 自定义区间，没有目录条目
)

// DefaultPeriod 未知周期回退使用的默认值
const DefaultPeriod = PeriodWeek

// IsValid 判断是否为已知的周期标识符（包括custom）
func (p Period) IsValid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodFourWk, PeriodMonth, PeriodQuarter, PeriodYear, PeriodAll, PeriodCustom:
		return true
	}
	return false
}

// Granularity 表示聚合粒度
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// IsValid 判断是否为已知的聚合粒度
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityHour, GranularityDay, GranularityMonth:
		return true
	}
	return false
}

// DateRange 表示一个日期区间
// 规范化后 Start 为当天 00:00:00，End 为当天 23:59:59
type DateRange struct {
	Start time.Time
	End   time.Time
}

// State 引擎状态快照
// 每次更新都会生成新的快照，不会被原地修改
type State struct {
	Period    Period      // 当前周期标识符
	StartDate time.Time   // 区间开始时间
	EndDate   time.Time   // 区间结束时间
	Diff      int         // 区间跨越的整天数
	GroupBy   Granularity // 聚合粒度
}

// Range 返回状态对应的日期区间
func (s State) Range() DateRange {
	return DateRange{Start: s.StartDate, End: s.EndDate}
}

// Equal 判断两个状态是否表示同一时刻和同样的取值
func (s State) Equal(other State) bool {
	return s.Period == other.Period &&
		s.StartDate.Equal(other.StartDate) &&
		s.EndDate.Equal(other.EndDate) &&
		s.Diff == other.Diff &&
		s.GroupBy == other.GroupBy
}

// ChangeFunc 状态变更通知回调
type ChangeFunc func(State)

// Clock 提供当前时间的能力
// 所有相对周期的计算都以它为参考点
type Clock interface {
	Now() time.Time
}

// Timer 可取消的定时任务
type Timer interface {
	// Stop 取消尚未触发的任务，返回是否成功取消
	Stop() bool
}

// Scheduler 定时任务调度器
// 生产环境使用 time.AfterFunc，测试中可以手动触发
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// PeriodStore 持久化默认周期的键值存储
type PeriodStore interface {
	// LoadDefaultPeriod 读取上次保存的周期，不存在时返回空字符串
	LoadDefaultPeriod() (Period, error)

	// SaveDefaultPeriod 保存周期，作为下次启动时的默认值
	SaveDefaultPeriod(p Period) error
}

// FragmentWriter 负责替换当前的URL片段
// 实现者不应该新增历史记录
type FragmentWriter interface {
	ReplaceFragment(fragment string) error
}
