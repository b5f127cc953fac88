package dao

import (
	"context"
	"errors"
	"time"

	"github.com/propline/entity-notes-engine/internal/domain"
	"github.com/propline/entity-notes-engine/internal/model"
	"github.com/propline/entity-notes-engine/pkg/code"
	"github.com/propline/entity-notes-engine/pkg/timex"

	"gorm.io/gorm"
)

// noteRecordRepository 实现 domain.NoteRepository 接口
type noteRecordRepository struct {
	dao *Dao
}

// NewNoteRecordRepository 创建 NoteRepository 实例
func NewNoteRecordRepository(dao *Dao) domain.NoteRepository {
	return &noteRecordRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRecordRepository) toDomain(m *model.NoteRecord) *domain.NoteRecord {
	if m == nil {
		return nil
	}
	return &domain.NoteRecord{
		EntityType:         domain.EntityType(m.EntityType),
		EntityID:           m.EntityID,
		Content:            m.Content,
		LastEditedAt:       time.Time(m.LastEditedAt),
		PreviousContent:    m.PreviousContent,
		PreviousSnapshotAt: time.Time(m.PreviousSnapshotAt),
		CreatedAt:          time.Time(m.CreatedAt),
		UpdatedAt:          time.Time(m.UpdatedAt),
	}
}

// toModel 将领域模型转换为数据库模型
func (r *noteRecordRepository) toModel(n *domain.NoteRecord) *model.NoteRecord {
	if n == nil {
		return nil
	}
	return &model.NoteRecord{
		EntityType:         string(n.EntityType),
		EntityID:           n.EntityID,
		Content:            n.Content,
		LastEditedAt:       timex.Time(n.LastEditedAt),
		PreviousContent:    n.PreviousContent,
		PreviousSnapshotAt: timex.Time(n.PreviousSnapshotAt),
		CreatedAt:          timex.Time(n.CreatedAt),
		UpdatedAt:          timex.Time(n.UpdatedAt),
	}
}

// Get 根据实体类型和实体 ID 获取笔记记录
func (r *noteRecordRepository) Get(ctx context.Context, entityType domain.EntityType, entityID string) (*domain.NoteRecord, error) {
	var m model.NoteRecord
	err := r.dao.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", string(entityType), entityID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Put writes the whole record in one transaction so the four persisted keys
// (content, lastEditedAt, previousContent, previousSnapshotAt) can never be
// observed half-updated. Writes with a lastEditedAt older than the stored
// one are rejected to keep the timestamp monotonically non-decreasing.
// Put 在一个事务内整行写入，四个持久化键不可能出现半更新状态。
// lastEditedAt 早于已存储值的写入会被拒绝，保证时间戳单调不减。
func (r *noteRecordRepository) Put(ctx context.Context, record *domain.NoteRecord) error {
	if !record.EntityType.Valid() {
		return code.ErrorInvalidEntityType
	}
	if record.EntityID == "" {
		return code.ErrorInvalidEntityID
	}

	err := r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.NoteRecord
		err := tx.Where("entity_type = ? AND entity_id = ?", string(record.EntityType), record.EntityID).
			First(&existing).Error

		now := timex.Now()
		m := r.toModel(record)
		m.UpdatedAt = now

		if errors.Is(err, gorm.ErrRecordNotFound) {
			m.CreatedAt = now
			return tx.Create(m).Error
		}
		if err != nil {
			return err
		}

		if time.Time(existing.LastEditedAt).After(record.LastEditedAt) {
			return code.ErrorStaleWrite
		}

		m.ID = existing.ID
		m.CreatedAt = existing.CreatedAt
		return tx.Model(&model.NoteRecord{}).
			Where("id = ?", existing.ID).
			Select("*").Omit("id").
			Updates(m).Error
	})
	if err != nil {
		return err
	}

	r.dao.notifier.Publish(record)
	return nil
}

// ListAll 获取全部笔记记录，仅供聚合视图使用
func (r *noteRecordRepository) ListAll(ctx context.Context) ([]*domain.NoteRecord, error) {
	var mList []*model.NoteRecord
	err := r.dao.db.WithContext(ctx).
		Order("last_edited_at DESC").
		Find(&mList).Error
	if err != nil {
		return nil, err
	}

	list := make([]*domain.NoteRecord, 0, len(mList))
	for _, m := range mList {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// Delete 物理删除一条记录，仅供孤儿清理任务使用
func (r *noteRecordRepository) Delete(ctx context.Context, entityType domain.EntityType, entityID string) error {
	return r.dao.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", string(entityType), entityID).
		Delete(&model.NoteRecord{}).Error
}
