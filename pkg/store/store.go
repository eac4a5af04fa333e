// Package store 提供默认周期和URL片段的持久化适配器
//
// SQLite 以键值表的形式保存设置，实现 core.PeriodStore 和 core.FragmentWriter；
// Memory 为测试和不需要持久化的场景提供同样的接口。
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/core"

	_ "modernc.org/sqlite"
)

// 设置表中使用的键
const (
	keyDefaultPeriod = "default_period"
	keyFragment      = "fragment"
)

// SQLite 基于SQLite的设置存储
type SQLite struct {
	db *sql.DB
}

// 编译期接口检查
var (
	_ core.PeriodStore    = (*SQLite)(nil)
	_ core.FragmentWriter = (*SQLite)(nil)
	_ core.PeriodStore    = (*Memory)(nil)
	_ core.FragmentWriter = (*Memory)(nil)
)

// Open 打开（或创建）数据库并初始化表结构
func Open(path string) (*SQLite, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close 关闭数据库连接
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`)
	return err
}

// get 读取设置，不存在时返回空字符串
func (s *SQLite) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// set 写入设置，存在时覆盖
func (s *SQLite) set(key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := retryOnContention(func() error {
		_, err := s.db.Exec(
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// LoadDefaultPeriod 实现core.PeriodStore接口
func (s *SQLite) LoadDefaultPeriod() (core.Period, error) {
	v, err := s.get(keyDefaultPeriod)
	return core.Period(v), err
}

// SaveDefaultPeriod 实现core.PeriodStore接口
func (s *SQLite) SaveDefaultPeriod(p core.Period) error {
	return s.set(keyDefaultPeriod, string(p))
}

// ReplaceFragment 实现core.FragmentWriter接口
// 只保留最新的片段，不记录历史
func (s *SQLite) ReplaceFragment(fragment string) error {
	return s.set(keyFragment, fragment)
}

// LoadFragment 读取上次写入的片段
func (s *SQLite) LoadFragment() (string, error) {
	return s.get(keyFragment)
}

// Memory 内存中的设置存储
type Memory struct {
	mu       sync.RWMutex
	period   core.Period
	fragment string
}

// NewMemory 创建内存存储
func NewMemory() *Memory {
	return &Memory{}
}

// LoadDefaultPeriod 实现core.PeriodStore接口
func (m *Memory) LoadDefaultPeriod() (core.Period, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.period, nil
}

// SaveDefaultPeriod 实现core.PeriodStore接口
func (m *Memory) SaveDefaultPeriod(p core.Period) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.period = p
	return nil
}

// ReplaceFragment 实现core.FragmentWriter接口
func (m *Memory) ReplaceFragment(fragment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fragment = fragment
	return nil
}

// LoadFragment 读取上次写入的片段
func (m *Memory) LoadFragment() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fragment, nil
}
