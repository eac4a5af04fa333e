// Package tui 交互控制模块
package tui

import (
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/picker"
	"github.com/gdamore/tcell/v2"
)

// navigationThrottle 平移事件频率控制
// 连续若干次事件后进入休息，休息期间的事件被忽略
type navigationThrottle struct {
	counter   int           // 事件计数器
	threshold int           // 达到阈值后休息
	rest      time.Duration // 休息时长
	resting   bool          // 是否在休息状态
	lastEvent time.Time     // 最后一次事件时间
	now       func() time.Time
}

func newNavigationThrottle(threshold int, rest time.Duration) *navigationThrottle {
	return &navigationThrottle{
		threshold: threshold,
		rest:      rest,
		now:       time.Now,
	}
}

// allow 判断是否应该处理事件
func (n *navigationThrottle) allow() bool {
	if !n.resting {
		return true
	}

	// 休息够了，重置状态
	if n.now().Sub(n.lastEvent) >= n.rest {
		n.resting = false
		n.counter = 0
		return true
	}
	return false
}

// record 记录一次已处理的事件
func (n *navigationThrottle) record() {
	n.counter++
	n.lastEvent = n.now()

	if n.counter >= n.threshold {
		n.resting = true
	}
}

// setupKeyBindings 设置键盘绑定
func (t *TUI) setupKeyBindings() {
	t.app.SetInputCapture(t.handleKey)
}

// handleKey 将按键映射为引擎操作，返回nil表示事件已处理
func (t *TUI) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlC:
		t.Stop()
		return nil
	case tcell.KeyLeft:
		t.nudge(picker.Backward)
		return nil
	case tcell.KeyRight:
		t.nudge(picker.Forward)
		return nil
	case tcell.KeyRune:
		r := event.Rune()
		switch r {
		case 'q', 'Q':
			t.Stop()
			return nil
		}

		if token, ok := presetForRune(r); ok {
			t.controller.SelectPeriod(token)
			return nil
		}

		if g, ok := granularityForRune(r, t.controller.State().Diff); ok {
			t.controller.SetGroupBy(g)
			return nil
		}
	}
	return event
}

// nudge 带频率控制的平移
func (t *TUI) nudge(dir picker.Direction) {
	if !t.throttle.allow() {
		return
	}
	t.controller.Nudge(dir)
	t.throttle.record()
}
