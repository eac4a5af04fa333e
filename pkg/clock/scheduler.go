// Package clock 定时任务调度器
package clock

import (
	"sort"
	"sync"
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/core"
)

// Real 基于time.AfterFunc的调度器
type Real struct{}

// AfterFunc 实现core.Scheduler接口
func (Real) AfterFunc(d time.Duration, f func()) core.Timer {
	return time.AfterFunc(d, f)
}

// Manual 手动推进的调度器
// 任务只在调用Advance或FireAll时执行，且在调用者的goroutine中同步执行
type Manual struct {
	mu      sync.Mutex
	elapsed time.Duration
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	owner *Manual
	at    time.Duration
	seq   int
	f     func()
}

// NewManual 创建手动调度器
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc 实现core.Scheduler接口
func (m *Manual) AfterFunc(d time.Duration, f func()) core.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{owner: m, at: m.elapsed + d, seq: m.seq, f: f}
	m.pending = append(m.pending, t)
	return t
}

// Stop 实现core.Timer接口
func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()

	for i, p := range t.owner.pending {
		if p == t {
			t.owner.pending = append(t.owner.pending[:i], t.owner.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Pending 返回尚未触发的任务数
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Advance 推进时间并执行所有到期的任务，返回执行的任务数
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	m.elapsed += d
	due := m.takeDue(m.elapsed)
	m.mu.Unlock()

	// 在锁外执行，任务中可以再次调度
	for _, t := range due {
		t.f()
	}
	return len(due)
}

// FireAll 推进到最晚的待触发任务并全部执行
func (m *Manual) FireAll() int {
	m.mu.Lock()
	var d time.Duration
	for _, t := range m.pending {
		if t.at-m.elapsed > d {
			d = t.at - m.elapsed
		}
	}
	m.mu.Unlock()

	return m.Advance(d)
}

// takeDue 取出到期任务，按到期时间和创建顺序排序（调用者持有锁）
func (m *Manual) takeDue(now time.Duration) []*manualTimer {
	var due, rest []*manualTimer
	for _, t := range m.pending {
		if t.at <= now {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	m.pending = rest

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	return due
}
