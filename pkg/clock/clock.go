// Package clock 提供周期刷新的时钟源和定时任务调度器
//
// Source 不在每次调用时读取系统时间，而是由后台ticker按固定间隔刷新缓存的时刻。
// 这样同一轮区间计算中所有周期函数看到的是同一个时刻，"今天"不会在计算途中改变，
// 代价是最多一个刷新间隔的滞后。
package clock

import (
	"errors"
	"sync"
	"time"
)

// DefaultRefreshInterval 默认刷新间隔
const DefaultRefreshInterval = 60 * time.Second

// Config 时钟源配置
type Config struct {
	RefreshInterval time.Duration    // 刷新间隔
	Location        *time.Location   // 日历计算使用的时区
	NowFunc         func() time.Time // 系统时间来源，测试中可替换
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval: DefaultRefreshInterval,
		Location:        time.Local,
		NowFunc:         time.Now,
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return errors.New("时钟刷新间隔必须大于0")
	}

	if c.RefreshInterval < time.Second {
		return errors.New("时钟刷新间隔不能小于1s")
	}

	if c.Location == nil {
		return errors.New("时区不能为空")
	}

	if c.NowFunc == nil {
		return errors.New("系统时间来源不能为空")
	}

	return nil
}

// Option 配置选项函数类型
type Option func(*Config)

// WithRefreshInterval 设置刷新间隔
func WithRefreshInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.RefreshInterval = interval
	}
}

// WithLocation 设置时区
func WithLocation(loc *time.Location) Option {
	return func(c *Config) {
		c.Location = loc
	}
}

// WithNowFunc 设置系统时间来源
func WithNowFunc(fn func() time.Time) Option {
	return func(c *Config) {
		c.NowFunc = fn
	}
}

// Source 周期刷新的时钟源，实现core.Clock接口
type Source struct {
	config *Config

	now   time.Time
	nowMu sync.RWMutex

	running   bool
	runningMu sync.Mutex
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewSource 创建时钟源并立即读取一次系统时间
func NewSource(opts ...Option) (*Source, error) {
	config := DefaultConfig()

	// 应用所有选项
	for _, opt := range opts {
		opt(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Source{config: config}
	s.Refresh()
	return s, nil
}

// Now 返回缓存的当前时刻
func (s *Source) Now() time.Time {
	s.nowMu.RLock()
	defer s.nowMu.RUnlock()
	return s.now
}

// Refresh 立即从系统时间刷新缓存
func (s *Source) Refresh() {
	now := s.config.NowFunc().In(s.config.Location)

	s.nowMu.Lock()
	s.now = now
	s.nowMu.Unlock()
}

// Start 启动后台刷新，重复调用无副作用
func (s *Source) Start() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})

	go s.refreshLoop(s.stopChan, s.doneChan)
}

// Stop 停止后台刷新并等待goroutine退出
func (s *Source) Stop() {
	s.runningMu.Lock()
	if !s.running {
		s.runningMu.Unlock()
		return
	}
	s.running = false
	stopChan, doneChan := s.stopChan, s.doneChan
	s.runningMu.Unlock()

	close(stopChan)
	<-doneChan
}

// refreshLoop 按固定间隔刷新时刻
func (s *Source) refreshLoop(stopChan <-chan struct{}, doneChan chan<- struct{}) {
	defer close(doneChan)

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Refresh()
		case <-stopChan:
			return
		}
	}
}

// Fixed 固定时刻的时钟，用于测试和一次性计算
type Fixed struct {
	mu sync.RWMutex
	t  time.Time
}

// NewFixed 创建固定时钟
func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

// Now 返回固定时刻
func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.t
}

// Set 修改固定时刻
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.t = t
	f.mu.Unlock()
}

// Advance 将固定时刻向前推进
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}
