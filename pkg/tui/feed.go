// Package tui 状态变更通道
package tui

import (
	"sync"

	"github.com/Kevin-Rudy/gorange/pkg/core"
)

// Feed 将引擎的变更回调转换为只读通道
// 通道已满时丢弃最旧的状态，保证最新状态总能送达
type Feed struct {
	ch chan core.State
	mu sync.Mutex
}

// NewFeed 创建状态变更通道
func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = 1
	}
	return &Feed{ch: make(chan core.State, buffer)}
}

// Publish 实现core.ChangeFunc，可直接作为引擎的回调
func (f *Feed) Publish(s core.State) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		select {
		case f.ch <- s:
			return
		default:
		}

		// 通道已满，丢弃最旧的一个
		select {
		case <-f.ch:
		default:
		}
	}
}

// Stream 返回只读的状态通道
func (f *Feed) Stream() <-chan core.State {
	return f.ch
}
