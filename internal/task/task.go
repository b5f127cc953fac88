// Package task 提供周期性维护任务的注册与调度
package task

import (
	"context"

	"github.com/propline/entity-notes-engine/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	// Name 任务名称
	Name() string
	// Spec cron 表达式，决定执行节律
	Spec() string
	// Run 执行任务
	Run(ctx context.Context) error
}

// Manager 任务管理器，负责调度所有已注册任务
type Manager struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewManager 创建任务管理器
func NewManager(l *zap.Logger) *Manager {
	if l == nil {
		l = zap.NewNop()
	}
	return &Manager{
		cron:   cron.New(),
		logger: l,
	}
}

// Add 注册任务
func (m *Manager) Add(t Task) error {
	_, err := m.cron.AddFunc(t.Spec(), func() {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("task panic",
					zap.String(logger.FieldTask, t.Name()),
					zap.Any("panic", r),
					zap.Stack("stack"))
			}
		}()

		if err := t.Run(context.Background()); err != nil {
			m.logger.Error("task run failed",
				zap.String(logger.FieldTask, t.Name()),
				zap.Error(err))
			return
		}
		m.logger.Debug("task run ok",
			zap.String(logger.FieldTask, t.Name()))
	})
	if err != nil {
		return err
	}

	m.logger.Info("task registered",
		zap.String(logger.FieldTask, t.Name()),
		zap.String("spec", t.Spec()))
	return nil
}

// Start 启动调度
func (m *Manager) Start() {
	m.cron.Start()
}

// Stop stops scheduling and waits for running tasks, bounded by ctx
// Stop 停止调度并等待运行中的任务结束，受 ctx 限制
func (m *Manager) Stop(ctx context.Context) error {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
