// Package picker 实现日期区间的状态协调器
//
// Picker 持有当前状态快照，所有修改都通过 SetDateRange 等操作完成。
// 区间变更的通知经过合并窗口：窗口内的多次调用只产生一次通知，
// 携带最后一次调用的状态。粒度变更则立即同步通知。
// 所有操作都不返回错误，非法输入被忽略或回退到默认值。
package picker

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/core"
	"github.com/Kevin-Rudy/gorange/pkg/period"
	"github.com/Kevin-Rudy/gorange/pkg/urlcodec"
)

// Picker 日期区间状态协调器
type Picker struct {
	config *Config
	clock  core.Clock
	logger *slog.Logger

	mu      sync.Mutex
	state   core.State
	pending core.Timer // 至多一个待触发的通知
}

// New 创建Picker并根据URL片段或持久化的默认周期初始化状态
func New(clk core.Clock, opts ...Option) (*Picker, error) {
	config := DefaultConfig()

	// 应用所有选项
	for _, opt := range opts {
		opt(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Picker{
		config: config,
		clock:  clk,
		logger: config.Logger,
	}
	p.seed()

	return p, nil
}

// seed 初始化状态
// 周期优先级：URL片段 > 持久化默认值 > 1w
func (p *Picker) seed() {
	now := p.clock.Now()
	seed := urlcodec.Decode(p.config.Fragment, now.Location())

	token := seed.Period
	if token == "" {
		token = p.loadDefaultPeriod()
	}
	if token == "" {
		token = core.DefaultPeriod
	}

	if token != core.PeriodCustom {
		p.UpdateFromPeriod(token, seed.GroupBy)
		return
	}

	// 自定义区间以片段中的日期为准，缺失的日期取当前时刻
	start, end := seed.Start, seed.End
	if start.IsZero() {
		start = now
	}
	if end.IsZero() {
		end = now
	}

	groupBy := seed.GroupBy
	if groupBy == "" {
		groupBy = core.GranularityDay
	}

	state := core.State{
		Period:    core.PeriodCustom,
		StartDate: start,
		EndDate:   end,
		Diff:      diffOf(start, end),
		GroupBy:   groupBy,
	}

	p.mu.Lock()
	p.state = state
	p.mu.Unlock()

	p.logger.Debug("seeded custom range",
		slog.Time("start", start),
		slog.Time("end", end),
		slog.String("group_by", string(groupBy)))

	if p.config.OnChange != nil {
		p.config.OnChange(state)
	}
}

// loadDefaultPeriod 读取持久化的默认周期，出错时视为不存在
func (p *Picker) loadDefaultPeriod() core.Period {
	if p.config.Store == nil {
		return ""
	}

	token, err := p.config.Store.LoadDefaultPeriod()
	if err != nil {
		p.logger.Warn("load default period failed", slog.Any("error", err))
		return ""
	}
	return token
}

// State 返回当前状态快照
func (p *Picker) State() core.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Fragment 返回当前状态对应的URL片段
func (p *Picker) Fragment() string {
	return urlcodec.Fragment(p.State())
}

// SetDateRange 设置日期区间，是区间变更的唯一入口
// start 晚于 end 时忽略本次调用（用户可能正在选择日期）
// groupBy 为空时根据区间天数推断
func (p *Picker) SetDateRange(start, end time.Time, token core.Period, groupBy core.Granularity) {
	if start.After(end) {
		p.logger.Debug("ignored inverted range",
			slog.Time("start", start),
			slog.Time("end", end))
		return
	}

	if groupBy != "" && !groupBy.IsValid() {
		p.logger.Debug("ignored unknown granularity", slog.String("group_by", string(groupBy)))
		groupBy = ""
	}

	r := period.Normalize(core.DateRange{Start: start, End: end})
	diff := period.Diff(r)

	state := core.State{
		Period:    token,
		StartDate: r.Start,
		EndDate:   r.End,
		Diff:      diff,
		GroupBy:   period.Infer(diff, groupBy),
	}

	p.mu.Lock()
	p.state = state
	if p.pending == nil {
		p.pending = p.config.Scheduler.AfterFunc(p.config.Debounce, p.flushPending)
	}
	p.mu.Unlock()
}

// UpdateFromPeriod 根据周期标识符解析区间并更新状态
// 未知标识符回退到1w
func (p *Picker) UpdateFromPeriod(token core.Period, groupBy core.Granularity) {
	effective, r := period.Resolve(token, p.clock)
	if effective != token {
		p.logger.Debug("unknown period, falling back",
			slog.String("period", string(token)),
			slog.String("fallback", string(effective)))
	}

	p.SetDateRange(r.Start, r.End, effective, groupBy)
}

// SelectPeriod 选择预设周期
// 与当前周期相同时不做任何事；否则先保存之前的周期作为下次启动的默认值
func (p *Picker) SelectPeriod(token core.Period) {
	previous := p.State().Period
	if token == previous {
		return
	}

	if p.config.Store != nil {
		if err := p.config.Store.SaveDefaultPeriod(previous); err != nil {
			p.logger.Warn("save default period failed",
				slog.String("period", string(previous)),
				slog.Any("error", err))
		}
	}

	p.UpdateFromPeriod(token, "")
}

// SetStartDate 显式设置开始日期，区间变为custom
func (p *Picker) SetStartDate(date time.Time) {
	p.SetDateRange(date, p.State().EndDate, core.PeriodCustom, "")
}

// SetEndDate 显式设置结束日期，区间变为custom
func (p *Picker) SetEndDate(date time.Time) {
	p.SetDateRange(p.State().StartDate, date, core.PeriodCustom, "")
}

// SetGroupBy 直接修改聚合粒度并立即通知，不经过合并窗口
func (p *Picker) SetGroupBy(groupBy core.Granularity) {
	if !groupBy.IsValid() {
		p.logger.Debug("ignored unknown granularity", slog.String("group_by", string(groupBy)))
		return
	}

	p.mu.Lock()
	p.state.GroupBy = groupBy
	state := p.state
	p.mu.Unlock()

	p.publish(state)
}

// Flush 立即发出待触发的通知，没有待触发通知时返回false
func (p *Picker) Flush() bool {
	p.mu.Lock()
	if p.pending == nil {
		p.mu.Unlock()
		return false
	}
	p.pending.Stop()
	p.pending = nil
	state := p.state
	p.mu.Unlock()

	p.publish(state)
	return true
}

// Close 取消待触发的通知
func (p *Picker) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
}

// flushPending 合并窗口到期，发出携带最新状态的通知
func (p *Picker) flushPending() {
	p.mu.Lock()
	if p.pending == nil {
		// 已被Flush或Close处理
		p.mu.Unlock()
		return
	}
	p.pending = nil
	state := p.state
	p.mu.Unlock()

	p.publish(state)
}

// publish 调用变更回调并写入URL片段，不持有锁
func (p *Picker) publish(state core.State) {
	if p.config.OnChange != nil {
		p.config.OnChange(state)
	}

	if p.config.Writer != nil {
		fragment := urlcodec.Fragment(state)
		if err := p.config.Writer.ReplaceFragment(fragment); err != nil {
			p.logger.Warn("replace fragment failed",
				slog.String("fragment", fragment),
				slog.Any("error", err))
		}
	}
}

// diffOf 计算任意两个时刻之间的整天数，不小于0
func diffOf(start, end time.Time) int {
	d := period.Diff(core.DateRange{Start: start, End: end})
	if d < 0 {
		return 0
	}
	return d
}
