package domain

import "context"

// NoteRepository 笔记仓储接口
// 实现方必须保证 Put 对单条记录是原子的：崩溃后不会出现
// content 已更新而 lastEditedAt 仍是旧值（或相反）的状态。
type NoteRepository interface {
	// Get 根据实体类型和实体 ID 获取笔记记录
	Get(ctx context.Context, entityType EntityType, entityID string) (*NoteRecord, error)

	// Put 写入（插入或整行覆盖）一条笔记记录
	Put(ctx context.Context, record *NoteRecord) error

	// ListAll 获取全部笔记记录，仅供聚合视图使用
	ListAll(ctx context.Context) ([]*NoteRecord, error)

	// Delete 物理删除一条记录，仅供孤儿清理任务使用
	Delete(ctx context.Context, entityType EntityType, entityID string) error
}
