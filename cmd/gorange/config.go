package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/clock"
	"github.com/Kevin-Rudy/gorange/pkg/picker"
	"github.com/Kevin-Rudy/gorange/pkg/tui"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用层配置聚合
type AppConfig struct {
	DBPath      string             // 设置数据库路径，为空时不持久化
	Fragment    string             // 启动时的URL片段，为空时使用上次保存的片段
	Location    *time.Location     // 日历计算使用的时区
	Debounce    time.Duration      // 通知合并窗口
	NudgePolicy picker.NudgePolicy // 方向平移策略
	LogLevel    slog.Level         // 日志级别
	LogFile     string             // 日志文件，交互模式下为空时不输出日志
	ClockConfig *clock.Config
	TUIConfig   *tui.Config
}

// fileConfig YAML配置文件结构
type fileConfig struct {
	DB           string        `yaml:"db"`
	Location     string        `yaml:"location"`
	Debounce     time.Duration `yaml:"debounce"`
	ClockRefresh time.Duration `yaml:"clock_refresh"`
	NudgePolicy  string        `yaml:"nudge_policy"`
	LogLevel     string        `yaml:"log_level"`
	LogFile      string        `yaml:"log_file"`
	TUI          struct {
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		DateLayout      string        `yaml:"date_layout"`
	} `yaml:"tui"`
}

// defaultAppConfig 返回默认配置
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		DBPath:      defaultDBPath(),
		Location:    time.Local,
		Debounce:    picker.DefaultConfig().Debounce,
		NudgePolicy: picker.NudgeKeepPeriod,
		LogLevel:    slog.LevelInfo,
		ClockConfig: clock.DefaultConfig(),
		TUIConfig:   tui.DefaultConfig(),
	}
}

// loadFileConfig 读取YAML配置文件并覆盖默认值
func loadFileConfig(path string, config *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("解析配置文件: %w", err)
	}

	if fc.DB != "" {
		config.DBPath = fc.DB
	}
	if fc.Location != "" {
		loc, err := time.LoadLocation(fc.Location)
		if err != nil {
			return fmt.Errorf("未知时区 %q: %w", fc.Location, err)
		}
		config.Location = loc
	}
	if fc.Debounce != 0 {
		config.Debounce = fc.Debounce
	}
	if fc.ClockRefresh != 0 {
		config.ClockConfig.RefreshInterval = fc.ClockRefresh
	}
	if fc.NudgePolicy != "" {
		config.NudgePolicy = picker.NudgePolicy(fc.NudgePolicy)
	}
	if fc.LogLevel != "" {
		level, err := parseLogLevel(fc.LogLevel)
		if err != nil {
			return err
		}
		config.LogLevel = level
	}
	if fc.LogFile != "" {
		config.LogFile = fc.LogFile
	}
	if fc.TUI.RefreshInterval != 0 {
		config.TUIConfig.RefreshInterval = fc.TUI.RefreshInterval
	}
	if fc.TUI.DateLayout != "" {
		config.TUIConfig.DateLayout = fc.TUI.DateLayout
	}

	return nil
}

// buildConfigFromCLI 从配置文件和命令行参数构建配置，命令行参数优先
func buildConfigFromCLI(c *cli.Context) (*AppConfig, error) {
	config := defaultAppConfig()

	if path := c.String("config"); path != "" {
		if err := loadFileConfig(path, config); err != nil {
			return nil, err
		}
	}

	if c.IsSet("db") {
		config.DBPath = c.String("db")
	}
	if c.IsSet("fragment") {
		config.Fragment = c.String("fragment")
	}
	if c.IsSet("location") {
		loc, err := time.LoadLocation(c.String("location"))
		if err != nil {
			return nil, fmt.Errorf("未知时区 %q: %w", c.String("location"), err)
		}
		config.Location = loc
	}
	if c.IsSet("debounce") {
		config.Debounce = c.Duration("debounce")
	}
	if c.IsSet("clock-refresh") {
		config.ClockConfig.RefreshInterval = c.Duration("clock-refresh")
	}
	if c.IsSet("nudge-policy") {
		config.NudgePolicy = picker.NudgePolicy(c.String("nudge-policy"))
	}
	if c.IsSet("log-level") {
		level, err := parseLogLevel(c.String("log-level"))
		if err != nil {
			return nil, err
		}
		config.LogLevel = level
	}
	if c.IsSet("log-file") {
		config.LogFile = c.String("log-file")
	}

	config.ClockConfig.Location = config.Location

	return config, nil
}

// validateConfig 验证配置的合理性
func validateConfig(config *AppConfig) error {
	if err := config.ClockConfig.Validate(); err != nil {
		return fmt.Errorf("clock配置错误: %w", err)
	}

	pickerConfig := picker.DefaultConfig()
	pickerConfig.Debounce = config.Debounce
	pickerConfig.NudgePolicy = config.NudgePolicy
	if err := pickerConfig.Validate(); err != nil {
		return fmt.Errorf("picker配置错误: %w", err)
	}

	if err := config.TUIConfig.Validate(); err != nil {
		return fmt.Errorf("tui配置错误: %w", err)
	}

	if config.Location == nil {
		return errors.New("时区不能为空")
	}

	return nil
}

// parseLogLevel 解析日志级别
func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("未知日志级别 %q", s)
	}
	return level, nil
}

// defaultDBPath 默认数据库位于用户配置目录
func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return dir + string(os.PathSeparator) + AppName + string(os.PathSeparator) + "settings.db"
}
