package main

import (
	"fmt"
	"io"
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/core"
	"github.com/Kevin-Rudy/gorange/pkg/urlcodec"
)

// 程序信息常量
const (
	AppName    = "gorange"
	AppVersion = "0.1.0"
	AppDesc    = "基于相对周期的日期区间选择器"
)

// dateLayout 命令行中使用的日期格式
const dateLayout = "2006-01-02"

// printState 打印引擎状态
func printState(w io.Writer, s core.State) {
	fmt.Fprintf(w, "周期:   %s\n", s.Period)
	fmt.Fprintf(w, "开始:   %s\n", s.StartDate.Format(time.RFC3339))
	fmt.Fprintf(w, "结束:   %s\n", s.EndDate.Format(time.RFC3339))
	fmt.Fprintf(w, "天数:   %d\n", s.Diff)
	fmt.Fprintf(w, "粒度:   %s\n", s.GroupBy)
	fmt.Fprintf(w, "片段:   %s\n", urlcodec.Fragment(s))
}

// printSeed 打印解码结果，缺失的键显示为 -
func printSeed(w io.Writer, seed urlcodec.Seed) {
	fmt.Fprintf(w, "周期:   %s\n", orDash(string(seed.Period)))
	fmt.Fprintf(w, "粒度:   %s\n", orDash(string(seed.GroupBy)))
	fmt.Fprintf(w, "开始:   %s\n", formatOptionalTime(seed.Start))
	fmt.Fprintf(w, "结束:   %s\n", formatOptionalTime(seed.End))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatOptionalTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
