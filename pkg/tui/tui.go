// Package tui 提供日期区间选择器的终端界面
// 界面只负责展示和按键映射，所有状态由引擎维护
package tui

import (
	"sync"
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/core"
	"github.com/Kevin-Rudy/gorange/pkg/picker"
	"github.com/rivo/tview"
)

// Controller 界面需要的引擎操作
// *picker.Picker 实现了这个接口
type Controller interface {
	State() core.State
	Fragment() string
	SelectPeriod(token core.Period)
	SetGroupBy(groupBy core.Granularity)
	Nudge(dir picker.Direction)
}

// TUI 主界面结构
type TUI struct {
	app       *tview.Application
	flex      *tview.Flex
	presets   *tview.TextView
	rangeView *tview.TextView
	groups    *tview.TextView
	status    *tview.TextView

	controller Controller
	feed       *Feed
	clock      core.Clock

	// 配置信息
	tuiConfig *Config

	// 最近一次收到的状态
	state   core.State
	stateMu sync.RWMutex

	// 平移频率控制
	throttle *navigationThrottle

	// 控制
	stopChan chan struct{}
	doneChan chan struct{}

	// 测试模式标志
	testMode bool
}

// NewTUI 创建新的TUI实例
func NewTUI(controller Controller, feed *Feed, clk core.Clock, tuiConfig *Config) *TUI {
	t := newTUI(controller, feed, clk, tuiConfig)
	t.app = tview.NewApplication()
	t.presets = tview.NewTextView()
	t.rangeView = tview.NewTextView()
	t.groups = tview.NewTextView()
	t.status = tview.NewTextView()

	t.setupUI()
	t.setupKeyBindings()

	return t
}

// NewTUIForTest 创建用于测试的TUI实例（不初始化图形组件）
func NewTUIForTest(controller Controller, feed *Feed, clk core.Clock, tuiConfig *Config) *TUI {
	t := newTUI(controller, feed, clk, tuiConfig)
	t.app = tview.NewApplication() // 创建一个应用实例，但不会运行
	t.testMode = true
	return t
}

func newTUI(controller Controller, feed *Feed, clk core.Clock, tuiConfig *Config) *TUI {
	return &TUI{
		controller: controller,
		feed:       feed,
		clock:      clk,
		tuiConfig:  tuiConfig,
		state:      controller.State(),
		throttle:   newNavigationThrottle(tuiConfig.NavigationThreshold, tuiConfig.NavigationRest),
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
}

// Run 启动TUI界面，阻塞直到用户退出
func (t *TUI) Run() error {
	go t.processUpdates()

	err := t.app.Run()

	// 确保清理工作完成
	t.Stop()
	<-t.doneChan

	return err
}

// Stop 停止TUI界面
func (t *TUI) Stop() {
	select {
	case <-t.stopChan:
		// stopChan已经关闭，避免重复关闭
	default:
		close(t.stopChan)
	}

	if !t.testMode {
		t.app.Stop()
	}
}

// processUpdates 处理引擎通知并定时刷新状态栏
func (t *TUI) processUpdates() {
	defer close(t.doneChan)

	uiTicker := time.NewTicker(t.tuiConfig.RefreshInterval)
	defer uiTicker.Stop()

	// 初始绘制
	t.handleUIRefresh()

	for {
		select {
		case state := <-t.feed.Stream():
			t.applyState(state)
			t.handleUIRefresh()

		case <-uiTicker.C:
			t.handleUIRefresh()

		case <-t.stopChan:
			return
		}
	}
}

// applyState 记录最新状态
func (t *TUI) applyState(state core.State) {
	t.stateMu.Lock()
	t.state = state
	t.stateMu.Unlock()
}

// currentState 返回界面上展示的状态
func (t *TUI) currentState() core.State {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	return t.state
}

// handleUIRefresh 处理UI刷新
func (t *TUI) handleUIRefresh() {
	if !t.testMode && t.app != nil {
		t.safeUIUpdate(t.render)
	}
}
