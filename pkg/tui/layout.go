// Package tui 布局管理模块
package tui

import (
	"fmt"
	"strings"

	"github.com/Kevin-Rudy/gorange/pkg/core"
	"github.com/Kevin-Rudy/gorange/pkg/period"
	"github.com/rivo/tview"
)

// granularityLabels 粒度的显示名称和快捷键
var granularityLabels = map[core.Granularity]struct {
	label string
	key   rune
}{
	core.GranularityHour:  {"Hourly", 'h'},
	core.GranularityDay:   {"Daily", 'd'},
	core.GranularityMonth: {"Monthly", 'm'},
}

// setupUI 设置用户界面布局
func (t *TUI) setupUI() {
	for _, view := range []*tview.TextView{t.presets, t.rangeView, t.groups, t.status} {
		view.SetDynamicColors(true)
		view.SetWrap(false)
		view.SetTextAlign(tview.AlignCenter)
	}

	// 创建主垂直布局
	t.flex = tview.NewFlex()
	t.flex.SetDirection(tview.FlexRow)
	t.flex.SetBorder(true)
	t.flex.SetTitle(" gorange ")

	t.flex.AddItem(t.presets, 1, 0, false)
	t.flex.AddItem(t.rangeView, 1, 0, false)
	t.flex.AddItem(t.groups, 1, 0, false)
	t.flex.AddItem(tview.NewBox(), 0, 1, false)
	t.flex.AddItem(t.status, 1, 0, false)

	t.app.SetRoot(t.flex, true)
}

// render 根据最新状态重绘所有视图
func (t *TUI) render() {
	if t.testMode {
		return
	}

	state := t.currentState()
	t.presets.SetText(t.renderPresets(state))
	t.rangeView.SetText(t.renderRange(state))
	t.groups.SetText(t.renderGroups(state))
	t.status.SetText(t.renderStatus())
}

// renderPresets 渲染预设周期行，当前周期高亮
func (t *TUI) renderPresets(state core.State) string {
	var parts []string
	for i, e := range period.Entries() {
		item := fmt.Sprintf("%d:%s", i+1, e.Definition.Label)
		if e.Token == state.Period {
			item = "[black:yellow]" + item + "[-:-]"
		}
		parts = append(parts, item)
	}

	custom := "custom"
	if state.Period == core.PeriodCustom {
		custom = "[black:yellow]" + custom + "[-:-]"
	}
	parts = append(parts, custom)

	return strings.Join(parts, "  ")
}

// renderRange 渲染日期区间行
func (t *TUI) renderRange(state core.State) string {
	return fmt.Sprintf("[green]%s[white] › [green]%s[white]  (%s)",
		state.StartDate.Format(t.tuiConfig.DateLayout),
		state.EndDate.Format(t.tuiConfig.DateLayout),
		formatSpan(state.Diff))
}

// renderGroups 渲染当前区间可选的粒度
func (t *TUI) renderGroups(state core.State) string {
	var parts []string
	for _, g := range period.AvailableGranularities(state.Diff) {
		l := granularityLabels[g]
		item := fmt.Sprintf("%c:%s", l.key, l.label)
		if g == state.GroupBy {
			item = "[black:yellow]" + item + "[-:-]"
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, "  ")
}

// renderStatus 渲染状态栏：当前片段和时钟
func (t *TUI) renderStatus() string {
	return fmt.Sprintf("[gray]%s  ·  %s  ·  ←/→ 平移  q 退出[white]",
		t.controller.Fragment(),
		t.clock.Now().Format("2006-01-02 15:04"))
}

// safeUIUpdate 安全地执行UI更新操作
func (t *TUI) safeUIUpdate(updateFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			// 如果应用已经停止，忽略panic
		}
	}()
	t.app.QueueUpdateDraw(updateFunc)
}
