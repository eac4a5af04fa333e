package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/clock"
	"github.com/Kevin-Rudy/gorange/pkg/core"
	"github.com/Kevin-Rudy/gorange/pkg/period"
	"github.com/Kevin-Rudy/gorange/pkg/picker"
	"github.com/Kevin-Rudy/gorange/pkg/store"
	"github.com/Kevin-Rudy/gorange/pkg/tui"
	"github.com/Kevin-Rudy/gorange/pkg/urlcodec"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// settingsStore 引擎需要的持久化能力
type settingsStore interface {
	core.PeriodStore
	core.FragmentWriter
	LoadFragment() (string, error)
}

// loadConfig 构建并验证配置
func loadConfig(c *cli.Context) (*AppConfig, error) {
	appConfig, err := buildConfigFromCLI(c)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("配置错误: %v", err), 1)
	}

	if err := validateConfig(appConfig); err != nil {
		return nil, cli.Exit(fmt.Sprintf("配置验证失败: %v", err), 1)
	}

	return appConfig, nil
}

// runApp 交互模式：启动终端日期选择器
func runApp(c *cli.Context) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return cli.Exit("错误: 交互模式需要在终端中运行，非交互场景请使用 resolve/encode/decode 子命令", 1)
	}

	appConfig, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(appConfig, true)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法打开日志文件: %v", err), 1)
	}
	defer closeLog()

	settings, closeStore, err := openStore(appConfig.DBPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法打开设置数据库: %v", err), 1)
	}
	defer closeStore()

	// 未显式指定片段时恢复上次的状态
	fragment := appConfig.Fragment
	if fragment == "" {
		if fragment, err = settings.LoadFragment(); err != nil {
			logger.Warn("load fragment failed", slog.Any("error", err))
		}
	}

	clockSource, err := clock.NewSource(
		clock.WithRefreshInterval(appConfig.ClockConfig.RefreshInterval),
		clock.WithLocation(appConfig.Location),
	)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建时钟: %v", err), 1)
	}
	clockSource.Start()
	defer clockSource.Stop()

	feed := tui.NewFeed(appConfig.TUIConfig.FeedBuffer)

	engine, err := picker.New(clockSource,
		picker.WithFragment(fragment),
		picker.WithDebounce(appConfig.Debounce),
		picker.WithNudgePolicy(appConfig.NudgePolicy),
		picker.WithStore(settings),
		picker.WithFragmentWriter(settings),
		picker.WithOnChange(feed.Publish),
		picker.WithLogger(logger),
	)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建日期引擎: %v", err), 1)
	}
	defer engine.Close()

	logger.Info("picker started",
		slog.String("fragment", engine.Fragment()),
		slog.String("db", appConfig.DBPath))

	tuiInstance := tui.NewTUI(engine, feed, clockSource, appConfig.TUIConfig)
	if err := tuiInstance.Run(); err != nil {
		return cli.Exit(fmt.Sprintf("TUI运行出错: %v", err), 1)
	}

	// 退出前发出尚未发出的通知，保证片段已写入
	engine.Flush()
	return nil
}

// runResolve 解析单个周期
func runResolve(c *cli.Context) error {
	appConfig, err := loadConfig(c)
	if err != nil {
		return err
	}

	clk, err := referenceClock(c.String("at"), appConfig.Location)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	token := core.Period(c.Args().First())
	if token == "" {
		token = core.DefaultPeriod
	}

	groupBy := core.Granularity(c.String("group-by"))
	if groupBy != "" && !groupBy.IsValid() {
		return cli.Exit(fmt.Sprintf("错误: 未知粒度 %q", groupBy), 1)
	}

	logger, closeLog, err := newLogger(appConfig, false)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法打开日志文件: %v", err), 1)
	}
	defer closeLog()

	effective, r := period.Resolve(token, clk)
	if effective != token {
		logger.Warn("unknown period, falling back",
			slog.String("period", string(token)),
			slog.String("fallback", string(effective)))
	}

	diff := period.Diff(r)
	state := core.State{
		Period:    effective,
		StartDate: r.Start,
		EndDate:   r.End,
		Diff:      diff,
		GroupBy:   period.Infer(diff, groupBy),
	}
	printState(c.App.Writer, state)
	return nil
}

// runPeriods 列出所有预设周期
func runPeriods(c *cli.Context) error {
	appConfig, err := loadConfig(c)
	if err != nil {
		return err
	}

	clk, err := referenceClock(c.String("at"), appConfig.Location)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	// 所有周期使用同一时刻
	now := clk.Now()
	for _, e := range period.Entries() {
		_, r := period.ResolveAt(e.Token, now)
		diff := period.Diff(r)
		fmt.Fprintf(c.App.Writer, "%-6s %-4s %s › %s  %3d  %s\n",
			e.Token, e.Definition.Label,
			r.Start.Format(dateLayout), r.End.Format(dateLayout),
			diff, period.Infer(diff, ""))
	}
	return nil
}

// runEncode 编码区间
func runEncode(c *cli.Context) error {
	appConfig, err := loadConfig(c)
	if err != nil {
		return err
	}

	token := core.Period(c.String("period"))
	if !token.IsValid() {
		return cli.Exit(fmt.Sprintf("错误: 未知周期 %q", token), 1)
	}

	groupBy := core.Granularity(c.String("group-by"))
	if groupBy != "" && !groupBy.IsValid() {
		return cli.Exit(fmt.Sprintf("错误: 未知粒度 %q", groupBy), 1)
	}

	var r core.DateRange
	if token == core.PeriodCustom {
		start, err := time.ParseInLocation(dateLayout, c.String("start"), appConfig.Location)
		if err != nil {
			return cli.Exit(fmt.Sprintf("错误: 无效的开始日期 %q", c.String("start")), 1)
		}
		end, err := time.ParseInLocation(dateLayout, c.String("end"), appConfig.Location)
		if err != nil {
			return cli.Exit(fmt.Sprintf("错误: 无效的结束日期 %q", c.String("end")), 1)
		}
		if start.After(end) {
			return cli.Exit("错误: 开始日期不能晚于结束日期", 1)
		}
		r = period.Normalize(core.DateRange{Start: start, End: end})
	} else {
		_, r = period.Resolve(token, clock.NewFixed(time.Now().In(appConfig.Location)))
	}

	diff := period.Diff(r)
	fmt.Fprintln(c.App.Writer, urlcodec.Fragment(core.State{
		Period:    token,
		StartDate: r.Start,
		EndDate:   r.End,
		Diff:      diff,
		GroupBy:   period.Infer(diff, groupBy),
	}))
	return nil
}

// runDecode 解析片段
func runDecode(c *cli.Context) error {
	appConfig, err := loadConfig(c)
	if err != nil {
		return err
	}

	if c.NArg() != 1 {
		return cli.Exit("使用方法: gorange decode <片段>", 1)
	}

	seed := urlcodec.Decode(c.Args().First(), appConfig.Location)
	printSeed(c.App.Writer, seed)
	return nil
}

// referenceClock 返回参考时刻的时钟
func referenceClock(at string, loc *time.Location) (core.Clock, error) {
	if at == "" {
		return clock.NewFixed(time.Now().In(loc)), nil
	}

	t, err := time.ParseInLocation(dateLayout, at, loc)
	if err != nil {
		return nil, fmt.Errorf("错误: 无效的参考日期 %q", at)
	}
	return clock.NewFixed(t), nil
}

// openStore 打开设置存储，路径为空时使用内存存储
func openStore(path string) (settingsStore, func(), error) {
	if path == "" {
		return store.NewMemory(), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}

	s, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.Close() }, nil
}

// newLogger 创建日志，交互模式下只写日志文件
func newLogger(config *AppConfig, interactive bool) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	switch {
	case config.LogFile != "":
		f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { f.Close() }
	case interactive:
		// 日志会破坏终端界面
		return slog.New(slog.DiscardHandler), closeFn, nil
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: config.LogLevel})
	return slog.New(handler), closeFn, nil
}
