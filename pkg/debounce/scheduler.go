// Package debounce provides a per-key save scheduler
// Package debounce 提供按键位去抖的保存调度器
// Collapses bursts of edit events into a single downstream save per pause,
// and guarantees a final synchronous flush of pending saves on shutdown.
// 将连续的编辑事件合并为停顿后的一次保存，并保证关闭时同步冲刷所有待保存项。
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Error definitions
// 错误定义
var (
	// ErrSchedulerClosed returned when scheduling on a closed scheduler
	// ErrSchedulerClosed 调度器已关闭时返回
	ErrSchedulerClosed = errors.New("save scheduler is closed")
)

// Config scheduler configuration
// Config 调度器配置
type Config struct {
	// Delay inactivity window before a pending save fires, default 2 seconds
	// Delay 触发保存前的静默窗口，默认 2 秒
	Delay time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Delay: 2 * time.Second,
	}
}

// entry 单个键位的待保存状态
type entry struct {
	timer   *time.Timer
	pending func() error

	// runMu serializes executions for one key; a save never overlaps
	// another save of the same key
	// runMu 串行化同一键位的执行，同一键位的保存绝不重叠
	runMu sync.Mutex
}

// Scheduler debounces save operations per key
// Scheduler 按键位对保存操作去抖
type Scheduler struct {
	config Config
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

// New creates a save scheduler
// New 创建保存调度器
// cfg: configuration, if nil use default configuration
// cfg: 配置，如果为 nil 则使用默认配置
// logger: zap logger, if nil use nop logger
// logger: zap 日志器，如果为 nil 则使用 nop logger
func New(cfg *Config, logger *zap.Logger) *Scheduler {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		config:  *cfg,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Schedule arms (or re-arms) the delayed save for key. Each call replaces the
// previously pending fn and restarts the inactivity window, so a burst of N
// edits produces exactly one downstream save.
// Schedule 为键位装载（或重置）延迟保存。每次调用替换之前待执行的 fn
// 并重置静默窗口，因此连续 N 次编辑只产生一次保存。
func (s *Scheduler) Schedule(key string, fn func() error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSchedulerClosed
	}

	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.pending = fn
	e.timer = time.AfterFunc(s.config.Delay, func() {
		s.fire(key)
	})
	s.mu.Unlock()
	return nil
}

// Flush runs the pending save for key immediately, bypassing the delay, and
// waits for any save already executing for that key. Returns only after the
// key has no uncommitted work. No-op when the key is idle.
// Flush 立即执行键位的待保存操作，绕过延迟，并等待该键位正在执行的保存结束。
// 返回时该键位不再有未提交的工作。键位空闲时为空操作。
func (s *Scheduler) Flush(key string) error {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	s.mu.Unlock()

	// 拿到 runMu 即表示在途执行（若有）已结束
	e.runMu.Lock()
	defer e.runMu.Unlock()

	s.mu.Lock()
	fn := e.pending
	e.pending = nil
	s.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn()
}

// Pending reports whether key has an unsaved edit waiting
// Pending 返回键位是否有待保存的编辑
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return ok && e.pending != nil
}

// fire 定时器到期后的执行路径
// pending 只在持有 runMu 时摘取，Close/Flush 因此要么看到待保存项，
// 要么在 runMu 上等到执行结束，保存恰好提交一次
func (s *Scheduler) fire(key string) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok || e.pending == nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	e.runMu.Lock()
	defer e.runMu.Unlock()

	s.mu.Lock()
	if s.closed {
		// 已进入关闭流程，待保存项交由 Close 冲刷
		s.mu.Unlock()
		return
	}
	fn := e.pending
	e.pending = nil
	s.mu.Unlock()

	if fn == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.Error("debounced save failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

// Close stops all timers, waits for every save already executing, and
// synchronously flushes every pending save. This is the teardown path: an
// edit pending or mid-execution at shutdown is committed exactly once before
// Close returns. ctx bounds the total flush time.
// Close 停止所有定时器，等待正在执行的保存结束，并同步冲刷全部待保存项。
// 这是卸载路径：关闭时尚未保存或执行中的编辑会在 Close 返回前提交一次。
// ctx 用于限制整体冲刷时间。
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	type closeEntry struct {
		key string
		e   *entry
	}
	entries := make([]closeEntry, 0, len(s.entries))
	for key, e := range s.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
		entries = append(entries, closeEntry{key: key, e: e})
	}
	s.mu.Unlock()

	// 每个键位都要走一遍 runMu：定时器已触发但尚未提交的保存
	// 不再出现在 pending 里，只有拿到 runMu 才能确认它已落盘
	var firstErr error
	for _, ce := range entries {
		select {
		case <-ctx.Done():
			s.logger.Warn("save scheduler close timed out with pending saves",
				zap.String("key", ce.key))
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			return firstErr
		default:
		}

		ce.e.runMu.Lock()
		s.mu.Lock()
		fn := ce.e.pending
		ce.e.pending = nil
		s.mu.Unlock()

		var err error
		if fn != nil {
			err = fn()
		}
		ce.e.runMu.Unlock()

		if err != nil {
			s.logger.Error("flush on close failed",
				zap.String("key", ce.key),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
