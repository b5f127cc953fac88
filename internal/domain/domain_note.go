// Package domain 定义领域模型和接口
package domain

import "time"

// EntityType 定义可携带笔记的业务实体类型
type EntityType string

const (
	EntityLandlord  EntityType = "landlord"
	EntityVendor    EntityType = "vendor"
	EntityApplicant EntityType = "applicant"
	EntityProperty  EntityType = "property"
)

// EntityTypes 全部合法实体类型
var EntityTypes = []EntityType{
	EntityLandlord,
	EntityVendor,
	EntityApplicant,
	EntityProperty,
}

// Valid 判断实体类型是否合法
func (t EntityType) Valid() bool {
	switch t {
	case EntityLandlord, EntityVendor, EntityApplicant, EntityProperty:
		return true
	}
	return false
}

// NoteRecord 笔记领域模型，(entityType, entityId) 唯一
type NoteRecord struct {
	EntityType EntityType
	EntityID   string

	// Content 当前笔记内容，空串与"不存在记录"是两种状态
	Content string
	// LastEditedAt 最近一次提交保存的时间，单调不减
	LastEditedAt time.Time

	// PreviousContent 当前自然日编辑开始前的内容快照
	// 仅当与 Content 不同的时候保留
	PreviousContent string
	// PreviousSnapshotAt 快照捕获时间，零值表示无快照
	PreviousSnapshotAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the store key for the record
// Key 返回记录的存储键
func (n *NoteRecord) Key() string {
	return string(n.EntityType) + ":" + n.EntityID
}

// HasSnapshot 判断记录是否持有上一日快照
func (n *NoteRecord) HasSnapshot() bool {
	return !n.PreviousSnapshotAt.IsZero()
}

// IsEmpty 判断当前内容是否为空
func (n *NoteRecord) IsEmpty() bool {
	return n.Content == ""
}
