package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kevin-Rudy/gorange/pkg/core"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "settings.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestSQLiteDefaultPeriod 测试默认周期的读写
func TestSQLiteDefaultPeriod(t *testing.T) {
	s := newTestStore(t)

	p, err := s.LoadDefaultPeriod()
	if err != nil {
		t.Fatalf("LoadDefaultPeriod: %v", err)
	}
	if p != "" {
		t.Errorf("Expected empty period on a fresh db, got %q", p)
	}

	if err := s.SaveDefaultPeriod(core.PeriodMonth); err != nil {
		t.Fatalf("SaveDefaultPeriod: %v", err)
	}
	if err := s.SaveDefaultPeriod(core.PeriodYear); err != nil {
		t.Fatalf("SaveDefaultPeriod overwrite: %v", err)
	}

	p, err = s.LoadDefaultPeriod()
	if err != nil {
		t.Fatalf("LoadDefaultPeriod: %v", err)
	}
	if p != core.PeriodYear {
		t.Errorf("Expected ytd, got %q", p)
	}
}

// TestSQLiteFragment 测试片段只保留最新值
func TestSQLiteFragment(t *testing.T) {
	s := newTestStore(t)

	for _, f := range []string{"#!p=1w&g=day", "#!p=mtd&g=hour"} {
		if err := s.ReplaceFragment(f); err != nil {
			t.Fatalf("ReplaceFragment(%q): %v", f, err)
		}
	}

	got, err := s.LoadFragment()
	if err != nil {
		t.Fatalf("LoadFragment: %v", err)
	}
	if got != "#!p=mtd&g=hour" {
		t.Errorf("Expected latest fragment, got %q", got)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM settings WHERE key = ?`, keyFragment).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected a single fragment row, got %d", count)
	}
}

// TestSQLitePersistsAcrossOpen 测试重新打开后数据仍在
func TestSQLitePersistsAcrossOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "settings.db")

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveDefaultPeriod(core.PeriodFourWk); err != nil {
		t.Fatalf("SaveDefaultPeriod: %v", err)
	}
	s.Close()

	s, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	p, err := s.LoadDefaultPeriod()
	if err != nil || p != core.PeriodFourWk {
		t.Errorf("Expected 4w after reopen, got %q (%v)", p, err)
	}
}

// TestMemory 测试内存存储
func TestMemory(t *testing.T) {
	m := NewMemory()

	if p, _ := m.LoadDefaultPeriod(); p != "" {
		t.Errorf("Expected empty period, got %q", p)
	}

	m.SaveDefaultPeriod(core.PeriodAll)
	m.ReplaceFragment("#!p=all&g=month")

	if p, _ := m.LoadDefaultPeriod(); p != core.PeriodAll {
		t.Errorf("Expected all, got %q", p)
	}
	if f, _ := m.LoadFragment(); f != "#!p=all&g=month" {
		t.Errorf("Expected fragment, got %q", f)
	}
}

// TestIsTransientSQLiteErr 测试瞬时错误识别
func TestIsTransientSQLiteErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"non-transient", errors.New("syntax error"), false},
		{"busy", errors.New("SQLITE_BUSY"), true},
		{"locked text", errors.New("database is locked"), true},
		{"code 522", errors.New("sqlite: (522) short read"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransientSQLiteErr(tt.err); got != tt.want {
				t.Errorf("isTransientSQLiteErr(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestRetryOp 测试重试次数
func TestRetryOp(t *testing.T) {
	cfg := retryConfig{maxRetries: 2, baseDelay: time.Millisecond, maxDelay: 2 * time.Millisecond}

	calls := 0
	err := retryOp(cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("SQLITE_BUSY")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("Expected success on third call, got err=%v calls=%d", err, calls)
	}

	calls = 0
	permanent := errors.New("constraint failed")
	err = retryOp(cfg, func() error {
		calls++
		return permanent
	})
	if err != permanent || calls != 1 {
		t.Errorf("Expected immediate permanent error, got err=%v calls=%d", err, calls)
	}

	calls = 0
	err = retryOp(cfg, func() error {
		calls++
		return errors.New("database is locked")
	})
	if err == nil || calls != 3 {
		t.Errorf("Expected exhausted retries after 3 calls, got err=%v calls=%d", err, calls)
	}
}
