package model

import "github.com/propline/entity-notes-engine/pkg/timex"

const TableNameNoteRecord = "note_record"

// NoteRecord mapped from table <note_record>
// 一条业务实体的笔记记录，(entity_type, entity_id) 唯一
// 当前内容与时间戳、快照内容与时间戳保存在同一行，
// 借助单行事务写入保证四个键的原子性
type NoteRecord struct {
	ID                 int64      `gorm:"column:id;primaryKey" json:"id" form:"id"`
	EntityType         string     `gorm:"column:entity_type;not null;uniqueIndex:idx_entity,priority:1" json:"entityType" form:"entityType"`
	EntityID           string     `gorm:"column:entity_id;not null;uniqueIndex:idx_entity,priority:2" json:"entityId" form:"entityId"`
	Content            string     `gorm:"column:content" json:"content" form:"content"`
	LastEditedAt       timex.Time `gorm:"column:last_edited_at;type:datetime;index:idx_last_edited" json:"lastEditedAt" form:"lastEditedAt"`
	PreviousContent    string     `gorm:"column:previous_content" json:"previousContent" form:"previousContent"`
	PreviousSnapshotAt timex.Time `gorm:"column:previous_snapshot_at;type:datetime;default:NULL" json:"previousSnapshotAt" form:"previousSnapshotAt"`
	CreatedAt          timex.Time `gorm:"column:created_at;type:datetime;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt          timex.Time `gorm:"column:updated_at;type:datetime;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName NoteRecord's table name
func (*NoteRecord) TableName() string {
	return TableNameNoteRecord
}
