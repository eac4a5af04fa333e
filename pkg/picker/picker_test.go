package picker

import (
	"errors"
	"testing"
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/clock"
	"github.com/Kevin-Rudy/gorange/pkg/core"
	"github.com/Kevin-Rudy/gorange/pkg/store"
)

// 2024-03-15 星期五
var friday = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOf(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}

// recorder 记录变更通知
type recorder struct {
	states []core.State
}

func (r *recorder) onChange(s core.State) {
	r.states = append(r.states, s)
}

func (r *recorder) last() core.State {
	return r.states[len(r.states)-1]
}

// harness 测试用的Picker及其协作者
type harness struct {
	picker    *Picker
	scheduler *clock.Manual
	store     *store.Memory
	rec       *recorder
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		scheduler: clock.NewManual(),
		store:     store.NewMemory(),
		rec:       &recorder{},
	}

	all := append([]Option{
		WithScheduler(h.scheduler),
		WithStore(h.store),
		WithFragmentWriter(h.store),
		WithOnChange(h.rec.onChange),
	}, opts...)

	p, err := New(clock.NewFixed(friday), all...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.picker = p
	return h
}

// settle 触发待发出的通知
func (h *harness) settle() int {
	return h.scheduler.Advance(5 * time.Millisecond)
}

// TestNewDefaultsToWeek 测试没有片段和默认值时使用1w
func TestNewDefaultsToWeek(t *testing.T) {
	h := newHarness(t)

	state := h.picker.State()
	if state.Period != core.PeriodWeek {
		t.Errorf("Expected period 1w, got %s", state.Period)
	}
	if !state.StartDate.Equal(day(2024, 3, 9)) || !state.EndDate.Equal(endOf(2024, 3, 15)) {
		t.Errorf("Unexpected range %v - %v", state.StartDate, state.EndDate)
	}
	if state.Diff != 6 || state.GroupBy != core.GranularityDay {
		t.Errorf("Expected diff=6 groupBy=day, got diff=%d groupBy=%s", state.Diff, state.GroupBy)
	}

	// 通知经过合并窗口
	if len(h.rec.states) != 0 {
		t.Fatalf("Expected no notification before debounce, got %d", len(h.rec.states))
	}

	if n := h.settle(); n != 1 {
		t.Fatalf("Expected 1 timer to fire, got %d", n)
	}

	if len(h.rec.states) != 1 || !h.rec.last().Equal(state) {
		t.Errorf("Expected one notification with %+v, got %+v", state, h.rec.states)
	}

	fragment, _ := h.store.LoadFragment()
	if fragment != "#!p=1w&g=day" {
		t.Errorf("Expected fragment '#!p=1w&g=day', got '%s'", fragment)
	}
}

// TestNewSeedPriority 测试片段、默认值和回退的优先级
func TestNewSeedPriority(t *testing.T) {
	tests := []struct {
		name       string
		fragment   string
		stored     core.Period
		wantPeriod core.Period
		wantGroup  core.Granularity
	}{
		{"fragment wins", "#!p=mtd&g=hour", "4w", core.PeriodMonth, core.GranularityHour},
		{"stored default", "", "4w", core.PeriodFourWk, core.GranularityDay},
		{"fragment without period", "#!g=month", "1d", core.PeriodDay, core.GranularityMonth},
		{"unknown period falls back", "#!p=bogus", "", core.PeriodWeek, core.GranularityDay},
		{"unknown stored falls back", "", "zz", core.PeriodWeek, core.GranularityDay},
		{"ytd inferred month", "#!p=ytd", "", core.PeriodYear, core.GranularityMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := clock.NewManual()
			mem := store.NewMemory()
			if tt.stored != "" {
				mem.SaveDefaultPeriod(tt.stored)
			}

			p, err := New(clock.NewFixed(friday),
				WithScheduler(sched),
				WithStore(mem),
				WithFragment(tt.fragment))
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			state := p.State()
			if state.Period != tt.wantPeriod {
				t.Errorf("Expected period %s, got %s", tt.wantPeriod, state.Period)
			}
			if state.GroupBy != tt.wantGroup {
				t.Errorf("Expected groupBy %s, got %s", tt.wantGroup, state.GroupBy)
			}
		})
	}
}

// TestNewCustomSeed 测试自定义区间的初始化立即通知且不经过合并窗口
func TestNewCustomSeed(t *testing.T) {
	h := newHarness(t, WithFragment("#!p=custom&s=2024-02-01T00%3A00%3A00Z&e=2024-02-10T23%3A59%3A59Z&g=hour"))

	if len(h.rec.states) != 1 {
		t.Fatalf("Expected exactly one synchronous notification, got %d", len(h.rec.states))
	}
	if h.scheduler.Pending() != 0 {
		t.Errorf("Expected no pending timer for custom seed, got %d", h.scheduler.Pending())
	}

	state := h.rec.last()
	if state.Period != core.PeriodCustom {
		t.Errorf("Expected custom period, got %s", state.Period)
	}
	if !state.StartDate.Equal(day(2024, 2, 1)) || !state.EndDate.Equal(endOf(2024, 2, 10)) {
		t.Errorf("Unexpected seeded range %v - %v", state.StartDate, state.EndDate)
	}
	if state.Diff != 9 {
		t.Errorf("Expected diff 9, got %d", state.Diff)
	}
	if state.GroupBy != core.GranularityHour {
		t.Errorf("Expected explicit groupBy hour, got %s", state.GroupBy)
	}
}

// TestNewCustomSeedMissingDates 测试自定义区间缺失或非法日期时使用当前时刻
func TestNewCustomSeedMissingDates(t *testing.T) {
	h := newHarness(t, WithFragment("#!p=custom&s=garbage"))

	state := h.picker.State()
	if !state.StartDate.Equal(friday) || !state.EndDate.Equal(friday) {
		t.Errorf("Expected both bounds at clock now, got %v - %v", state.StartDate, state.EndDate)
	}
	if state.GroupBy != core.GranularityDay {
		t.Errorf("Expected default groupBy day, got %s", state.GroupBy)
	}
	if state.Diff != 0 {
		t.Errorf("Expected diff 0, got %d", state.Diff)
	}
}

// TestSetDateRangeInverted 测试开始晚于结束时保持原状态
func TestSetDateRangeInverted(t *testing.T) {
	h := newHarness(t)
	h.settle()
	before := h.picker.State()

	h.picker.SetDateRange(day(2024, 3, 20), day(2024, 3, 10), core.PeriodCustom, "")

	if after := h.picker.State(); after != before {
		t.Errorf("Expected state unchanged, got %+v", after)
	}
	if h.scheduler.Pending() != 0 {
		t.Error("Inverted range should not schedule a notification")
	}
}

// TestSetDateRangeNormalizes 测试区间规范化和粒度推断
func TestSetDateRangeNormalizes(t *testing.T) {
	h := newHarness(t)

	h.picker.SetDateRange(
		time.Date(2024, 1, 3, 15, 4, 5, 0, time.UTC),
		time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		core.PeriodCustom, "")

	state := h.picker.State()
	if !state.StartDate.Equal(day(2024, 1, 3)) || !state.EndDate.Equal(endOf(2024, 3, 1)) {
		t.Errorf("Expected normalized bounds, got %v - %v", state.StartDate, state.EndDate)
	}
	if state.Diff != 58 || state.GroupBy != core.GranularityMonth {
		t.Errorf("Expected diff=58 groupBy=month, got diff=%d groupBy=%s", state.Diff, state.GroupBy)
	}

	// 非法的显式粒度视为未指定
	h.picker.SetDateRange(day(2024, 3, 1), day(2024, 3, 1), core.PeriodCustom, "week")
	if g := h.picker.State().GroupBy; g != core.GranularityHour {
		t.Errorf("Expected inferred hour, got %s", g)
	}
}

// TestDebounceBurst 测试合并窗口内的多次调用只产生一次通知
func TestDebounceBurst(t *testing.T) {
	h := newHarness(t)
	h.settle()
	h.rec.states = nil

	for i := 1; i <= 10; i++ {
		h.picker.SetDateRange(day(2024, 3, 1), day(2024, 3, i), core.PeriodCustom, "")
	}

	if h.scheduler.Pending() != 1 {
		t.Fatalf("Expected a single pending timer, got %d", h.scheduler.Pending())
	}

	h.settle()

	if len(h.rec.states) != 1 {
		t.Fatalf("Expected exactly 1 notification, got %d", len(h.rec.states))
	}

	got := h.rec.last()
	if !got.EndDate.Equal(endOf(2024, 3, 10)) || got.Diff != 9 {
		t.Errorf("Expected the last state of the burst, got %+v", got)
	}

	fragment, _ := h.store.LoadFragment()
	want := "#!p=custom&s=2024-03-01T00%3A00%3A00Z&e=2024-03-10T23%3A59%3A59Z&g=day"
	if fragment != want {
		t.Errorf("Expected fragment '%s', got '%s'", want, fragment)
	}

	// 通知发出后新的调用重新开启窗口
	h.picker.UpdateFromPeriod(core.PeriodDay, "")
	h.settle()
	if len(h.rec.states) != 2 || h.rec.last().Period != core.PeriodDay {
		t.Errorf("Expected a second notification for 1d, got %+v", h.rec.states)
	}
}

// TestDebounceWindowNotExtended 测试窗口不会因后续调用而延长
func TestDebounceWindowNotExtended(t *testing.T) {
	h := newHarness(t)
	h.settle()
	h.rec.states = nil

	h.picker.UpdateFromPeriod(core.PeriodMonth, "")
	h.scheduler.Advance(3 * time.Millisecond)
	h.picker.UpdateFromPeriod(core.PeriodYear, "")

	if n := h.scheduler.Advance(2 * time.Millisecond); n != 1 {
		t.Fatalf("Expected the original timer to fire at 5ms, got %d", n)
	}
	if len(h.rec.states) != 1 || h.rec.last().Period != core.PeriodYear {
		t.Errorf("Expected one notification with ytd, got %+v", h.rec.states)
	}
}

// TestSetGroupBy 测试粒度变更立即同步通知
func TestSetGroupBy(t *testing.T) {
	h := newHarness(t)
	h.settle()
	h.rec.states = nil

	h.picker.SetGroupBy(core.GranularityHour)

	if len(h.rec.states) != 1 {
		t.Fatalf("Expected synchronous notification, got %d", len(h.rec.states))
	}
	if h.rec.last().GroupBy != core.GranularityHour {
		t.Errorf("Expected groupBy hour, got %s", h.rec.last().GroupBy)
	}
	if h.scheduler.Pending() != 0 {
		t.Error("SetGroupBy should not schedule a timer")
	}

	fragment, _ := h.store.LoadFragment()
	if fragment != "#!p=1w&g=hour" {
		t.Errorf("Expected fragment '#!p=1w&g=hour', got '%s'", fragment)
	}

	// 非法值被忽略
	h.picker.SetGroupBy("fortnight")
	if len(h.rec.states) != 1 || h.picker.State().GroupBy != core.GranularityHour {
		t.Error("Unknown granularity should be ignored")
	}
}

// TestNudge 测试方向平移
func TestNudge(t *testing.T) {
	h := newHarness(t)

	h.picker.Nudge(Backward)
	state := h.picker.State()
	if !state.StartDate.Equal(day(2024, 3, 2)) || !state.EndDate.Equal(endOf(2024, 3, 8)) {
		t.Errorf("Expected 03-02..03-08, got %v - %v", state.StartDate, state.EndDate)
	}
	if state.Period != core.PeriodWeek {
		t.Errorf("Expected period kept as 1w, got %s", state.Period)
	}

	h.picker.Nudge(Forward)
	h.picker.Nudge(Forward)
	state = h.picker.State()
	if !state.StartDate.Equal(day(2024, 3, 16)) || !state.EndDate.Equal(endOf(2024, 3, 22)) {
		t.Errorf("Expected 03-16..03-22, got %v - %v", state.StartDate, state.EndDate)
	}

	// 平移经过合并窗口，只通知一次
	h.settle()
	if len(h.rec.states) != 1 {
		t.Errorf("Expected 1 notification for the nudge burst, got %d", len(h.rec.states))
	}

	// 非法方向被忽略
	h.picker.Nudge(Direction(0))
	if h.picker.State() != state {
		t.Error("Zero direction should be a no-op")
	}
}

// TestNudgeMarkCustom 测试平移后标记为custom的策略
func TestNudgeMarkCustom(t *testing.T) {
	h := newHarness(t, WithNudgePolicy(NudgeMarkCustom))

	h.picker.Nudge(Backward)
	if p := h.picker.State().Period; p != core.PeriodCustom {
		t.Errorf("Expected custom after nudge, got %s", p)
	}
}

// TestNudgeReinfersGroupBy 测试平移后重新推断粒度
func TestNudgeReinfersGroupBy(t *testing.T) {
	h := newHarness(t, WithFragment("#!p=1d&g=day"))

	if g := h.picker.State().GroupBy; g != core.GranularityDay {
		t.Fatalf("Expected explicit day, got %s", g)
	}

	h.picker.Nudge(Backward)
	state := h.picker.State()
	if !state.StartDate.Equal(day(2024, 3, 14)) || state.GroupBy != core.GranularityHour {
		t.Errorf("Expected 03-14 with inferred hour, got %v %s", state.StartDate, state.GroupBy)
	}
}

// TestSelectPeriod 测试预设选择保存之前的周期
func TestSelectPeriod(t *testing.T) {
	h := newHarness(t)
	h.settle()

	h.picker.SelectPeriod(core.PeriodMonth)
	if stored, _ := h.store.LoadDefaultPeriod(); stored != core.PeriodWeek {
		t.Errorf("Expected previous period 1w to be stored, got %s", stored)
	}

	state := h.picker.State()
	if state.Period != core.PeriodMonth || state.Diff != 30 || state.GroupBy != core.GranularityDay {
		t.Errorf("Unexpected mtd state %+v", state)
	}

	// 选择当前周期不做任何事
	h.settle()
	h.store.SaveDefaultPeriod("marker")
	h.picker.SelectPeriod(core.PeriodMonth)
	if stored, _ := h.store.LoadDefaultPeriod(); stored != "marker" {
		t.Errorf("Selecting the current period should not write the store, got %s", stored)
	}
	if h.scheduler.Pending() != 0 {
		t.Error("Selecting the current period should not schedule a notification")
	}
}

// TestSetStartEndDate 测试显式设置单个边界
func TestSetStartEndDate(t *testing.T) {
	h := newHarness(t)

	h.picker.SetStartDate(day(2024, 3, 14))
	state := h.picker.State()
	if state.Period != core.PeriodCustom || !state.StartDate.Equal(day(2024, 3, 14)) {
		t.Errorf("Unexpected state after SetStartDate: %+v", state)
	}
	if state.GroupBy != core.GranularityHour {
		t.Errorf("Expected inferred hour for diff=1, got %s", state.GroupBy)
	}

	h.picker.SetEndDate(day(2024, 4, 30))
	state = h.picker.State()
	if !state.EndDate.Equal(endOf(2024, 4, 30)) || state.Diff != 47 {
		t.Errorf("Unexpected state after SetEndDate: %+v", state)
	}

	// 结束早于开始时忽略
	h.picker.SetEndDate(day(2024, 1, 1))
	if !h.picker.State().EndDate.Equal(endOf(2024, 4, 30)) {
		t.Error("Inverted SetEndDate should be ignored")
	}
}

// TestFlushAndClose 测试立即发出和取消待触发通知
func TestFlushAndClose(t *testing.T) {
	h := newHarness(t)

	if !h.picker.Flush() {
		t.Fatal("Expected Flush to publish the pending notification")
	}
	if len(h.rec.states) != 1 || h.scheduler.Pending() != 0 {
		t.Errorf("Expected 1 notification and no pending timer, got %d/%d", len(h.rec.states), h.scheduler.Pending())
	}
	if h.picker.Flush() {
		t.Error("Expected Flush to report nothing pending")
	}

	h.picker.UpdateFromPeriod(core.PeriodQuarter, "")
	h.picker.Close()
	h.scheduler.FireAll()
	if len(h.rec.states) != 1 {
		t.Errorf("Expected Close to drop the pending notification, got %d", len(h.rec.states))
	}
}

// failingStore 总是返回错误的存储
type failingStore struct{}

var errBroken = errors.New("broken")

func (failingStore) LoadDefaultPeriod() (core.Period, error) { return "", errBroken }
func (failingStore) SaveDefaultPeriod(core.Period) error     { return errBroken }
func (failingStore) ReplaceFragment(string) error            { return errBroken }

// TestStoreErrorsAbsorbed 测试存储错误不会影响状态
func TestStoreErrorsAbsorbed(t *testing.T) {
	sched := clock.NewManual()
	rec := &recorder{}
	p, err := New(clock.NewFixed(friday),
		WithScheduler(sched),
		WithStore(failingStore{}),
		WithFragmentWriter(failingStore{}),
		WithOnChange(rec.onChange))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	p.SelectPeriod(core.PeriodAll)
	sched.FireAll()

	if len(rec.states) != 1 || rec.last().Period != core.PeriodAll {
		t.Errorf("Expected notification for all despite store errors, got %+v", rec.states)
	}
}

// TestConfigValidate 测试配置验证
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero debounce", WithDebounce(0)},
		{"huge debounce", WithDebounce(2 * time.Second)},
		{"bad policy", WithNudgePolicy("sideways")},
		{"nil scheduler", WithScheduler(nil)},
		{"nil logger", WithLogger(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(clock.NewFixed(friday), tt.opt); err == nil {
				t.Error("Expected configuration error")
			}
		})
	}

	if _, err := New(clock.NewFixed(friday), WithScheduler(clock.NewManual())); err != nil {
		t.Errorf("Expected default configuration to be valid, got %v", err)
	}
}
