package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

// createCliApp 创建CLI应用实例
func createCliApp() *cli.App {
	app := &cli.App{
		Name:     AppName,
		Version:  AppVersion,
		Usage:    AppDesc,
		Flags:    createCliFlags(),
		Action:   runApp,
		Commands: createCommands(),
	}

	return app
}

// createCliFlags 创建CLI参数定义
func createCliFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML配置文件路径",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "设置数据库路径，为空时不持久化 (默认位于用户配置目录)",
		},
		&cli.StringFlag{
			Name:    "fragment",
			Aliases: []string{"f"},
			Usage:   "启动时的URL片段 (例如: '#!p=mtd&g=day')",
		},
		&cli.StringFlag{
			Name:    "location",
			Aliases: []string{"l"},
			Usage:   "日历计算使用的时区 (例如: Asia/Shanghai)",
		},
		&cli.DurationFlag{
			Name:  "debounce",
			Value: 5 * time.Millisecond,
			Usage: "区间变更通知的合并窗口",
		},
		&cli.DurationFlag{
			Name:  "clock-refresh",
			Value: 60 * time.Second,
			Usage: "时钟刷新间隔",
		},
		&cli.StringFlag{
			Name:  "nudge-policy",
			Value: "keep",
			Usage: "方向平移后的周期处理: keep 保留预设, custom 标记为自定义",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "日志级别 (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "日志文件路径，交互模式下默认不输出日志",
		},
	}
}

// createCommands 创建子命令
func createCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "resolve",
			Usage:     "解析周期并输出区间、天数、粒度和片段",
			ArgsUsage: "[周期]",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "at", Usage: "参考日期 (YYYY-MM-DD)，默认为当前时间"},
				&cli.StringFlag{Name: "group-by", Aliases: []string{"g"}, Usage: "显式指定粒度"},
			},
			Action: runResolve,
		},
		{
			Name:  "periods",
			Usage: "列出所有预设周期及其当前区间",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "at", Usage: "参考日期 (YYYY-MM-DD)，默认为当前时间"},
			},
			Action: runPeriods,
		},
		{
			Name:  "encode",
			Usage: "将区间编码为URL片段",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "period", Aliases: []string{"p"}, Value: "custom", Usage: "周期标识符"},
				&cli.StringFlag{Name: "start", Aliases: []string{"s"}, Usage: "开始日期 (YYYY-MM-DD)"},
				&cli.StringFlag{Name: "end", Aliases: []string{"e"}, Usage: "结束日期 (YYYY-MM-DD)"},
				&cli.StringFlag{Name: "group-by", Aliases: []string{"g"}, Usage: "粒度，默认根据区间推断"},
			},
			Action: runEncode,
		},
		{
			Name:      "decode",
			Usage:     "解析URL片段",
			ArgsUsage: "<片段>",
			Action:    runDecode,
		},
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "显示详细版本信息",
			Action: func(c *cli.Context) error {
				fmt.Printf("%s v%s\n", AppName, AppVersion)
				fmt.Printf("描述: %s\n", AppDesc)
				return nil
			},
		},
	}
}
