// Package picker 方向平移模块
package picker

import (
	"github.com/Kevin-Rudy/gorange/pkg/core"
	"github.com/Kevin-Rudy/gorange/pkg/period"
)

// Direction 平移方向
type Direction int

const (
	Backward Direction = -1 // 向过去平移
	Forward  Direction = 1  // 向未来平移
)

// Nudge 将区间整体平移一个区间长度（天数+1）
// 粒度重新推断，周期标识符按配置的策略处理
func (p *Picker) Nudge(dir Direction) {
	if dir != Backward && dir != Forward {
		return
	}

	state := p.State()
	days := (state.Diff + 1) * int(dir)
	shifted := period.Shift(state.Range(), days)

	token := state.Period
	if p.config.NudgePolicy == NudgeMarkCustom {
		token = core.PeriodCustom
	}

	p.SetDateRange(shifted.Start, shifted.End, token, "")
}
