// Package urlcodec 负责引擎状态与URL片段之间的编解码
//
// 命名周期只编码周期和粒度，日期总是根据周期重新推导；
// 自定义区间额外编码开始和结束时刻。
package urlcodec

import (
	"net/url"
	"strings"
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/core"
)

// 片段中使用的键
const (
	keyPeriod  = "p"
	keyStart   = "s"
	keyEnd     = "e"
	keyGroupBy = "g"
)

// Prefix 浏览器中片段的前缀
const Prefix = "#!"

// isoLayout 日期编码格式，统一使用UTC
const isoLayout = time.RFC3339Nano

// dateLayout 仅日期的输入格式
const dateLayout = "2006-01-02"

// Seed 解码得到的部分状态
// 零值字段表示该键缺失或无法解析，由调用者决定默认值
type Seed struct {
	Period  core.Period
	GroupBy core.Granularity
	Start   time.Time
	End     time.Time
}

// HasDates 判断是否同时包含开始和结束时刻
func (s Seed) HasDates() bool {
	return !s.Start.IsZero() && !s.End.IsZero()
}

// Encode 将状态编码为查询串（不含前缀）
func Encode(state core.State) string {
	var b strings.Builder

	b.WriteString(keyPeriod + "=" + url.QueryEscape(string(state.Period)))
	if state.Period == core.PeriodCustom {
		b.WriteString("&" + keyStart + "=" + url.QueryEscape(formatDate(state.StartDate)))
		b.WriteString("&" + keyEnd + "=" + url.QueryEscape(formatDate(state.EndDate)))
	}
	b.WriteString("&" + keyGroupBy + "=" + url.QueryEscape(string(state.GroupBy)))

	return b.String()
}

// Fragment 返回带前缀的完整片段
func Fragment(state core.State) string {
	return Prefix + Encode(state)
}

// Decode 解析片段，容忍前缀、缺失的键和格式错误的值
// loc 用于解释不带时区的日期，为nil时使用time.Local
func Decode(fragment string, loc *time.Location) Seed {
	if loc == nil {
		loc = time.Local
	}

	fragment = strings.TrimPrefix(fragment, "#")
	fragment = strings.TrimPrefix(fragment, "!")

	var seed Seed
	for _, segment := range strings.Split(fragment, "&") {
		key, raw, ok := strings.Cut(segment, "=")
		if !ok || key == "" {
			continue
		}

		value, err := url.PathUnescape(raw)
		if err != nil {
			continue
		}

		switch key {
		case keyPeriod:
			if value != "" {
				seed.Period = core.Period(value)
			}
		case keyGroupBy:
			if g := core.Granularity(value); g.IsValid() {
				seed.GroupBy = g
			}
		case keyStart:
			if t, ok := parseDate(value, loc); ok {
				seed.Start = t
			}
		case keyEnd:
			if t, ok := parseDate(value, loc); ok {
				seed.End = t
			}
		}
	}

	return seed
}

// formatDate 以UTC的RFC3339格式输出，保留纳秒以便无损往返
func formatDate(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// parseDate 解析RFC3339或仅日期格式，结果转换到loc
func parseDate(value string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(loc), true
	}
	if t, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}
