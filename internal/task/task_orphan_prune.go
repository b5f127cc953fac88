package task

import (
	"context"

	"github.com/propline/entity-notes-engine/internal/domain"
	"github.com/propline/entity-notes-engine/pkg/logger"
	"github.com/propline/entity-notes-engine/pkg/metrics"

	"go.uber.org/zap"
)

// OrphanPruneTask removes note records whose owning entity no longer
// resolves in the registered directories. Entity deletion happens outside
// this subsystem, so records can be orphaned; the aggregator already hides
// them, this task reclaims the storage.
//
// OrphanPruneTask 清理在已注册目录中无法解析所属实体的笔记记录。
// 实体删除发生在本子系统之外，记录可能成为孤儿；
// 聚合视图已将其隐藏，本任务负责回收存储。
type OrphanPruneTask struct {
	repo   domain.NoteRepository
	dirs   domain.DirectorySet
	spec   string
	logger *zap.Logger
}

// NewOrphanPruneTask 创建孤儿清理任务
// dirs 必须覆盖全部实体类型，未覆盖的类型不做清理
func NewOrphanPruneTask(repo domain.NoteRepository, dirs domain.DirectorySet, spec string, l *zap.Logger) *OrphanPruneTask {
	if l == nil {
		l = zap.NewNop()
	}
	if spec == "" {
		spec = "0 3 * * *"
	}
	return &OrphanPruneTask{
		repo:   repo,
		dirs:   dirs,
		spec:   spec,
		logger: l,
	}
}

// Name 返回任务名称
func (t *OrphanPruneTask) Name() string {
	return "OrphanPrune"
}

// Spec 返回 cron 表达式
func (t *OrphanPruneTask) Spec() string {
	return t.spec
}

// Run 执行一次清理
func (t *OrphanPruneTask) Run(ctx context.Context) error {
	records, err := t.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	pruned := 0
	for _, record := range records {
		// 目录未覆盖的类型不视为孤儿，跳过
		if _, ok := t.dirs[record.EntityType]; !ok {
			continue
		}
		if _, ok := t.dirs.Resolve(record.EntityType, record.EntityID); ok {
			continue
		}

		if err := t.repo.Delete(ctx, record.EntityType, record.EntityID); err != nil {
			t.logger.Warn("orphan prune delete failed",
				zap.String(logger.FieldEntityType, string(record.EntityType)),
				zap.String(logger.FieldEntityID, record.EntityID),
				zap.Error(err))
			continue
		}
		metrics.OrphansPruned.Inc()
		pruned++
	}

	if pruned > 0 {
		t.logger.Info("orphan records pruned",
			zap.String(logger.FieldTask, t.Name()),
			zap.Int("count", pruned))
	}
	return nil
}
