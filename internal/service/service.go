// Package service 实现业务逻辑层
package service

import (
	"time"

	"github.com/propline/entity-notes-engine/internal/domain"
	"github.com/propline/entity-notes-engine/pkg/highlight"
	"github.com/propline/entity-notes-engine/pkg/timex"

	"github.com/jinzhu/copier"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// RemotePusher 远端投递接口，由 internal/remote.Client 实现
type RemotePusher interface {
	// Push 异步投递一条记录，done 非 nil 时收到投递结果
	Push(record *domain.NoteRecord, done func(error))
}

// NoteDTO 笔记数据传输对象，含展示用的高亮分段与同步状态
type NoteDTO struct {
	EntityType domain.EntityType `json:"entityType"`
	EntityID   string            `json:"entityId"`
	Content    string            `json:"content"`

	LastEditedAt       timex.Time `json:"lastEditedAt"`
	PreviousContent    string     `json:"previousContent,omitempty"`
	PreviousSnapshotAt timex.Time `json:"previousSnapshotAt,omitempty"`

	// UnchangedPrefix / ChangedSuffix 上次快照以来的追加高亮分段（仅展示）
	UnchangedPrefix string `json:"unchangedPrefix"`
	ChangedSuffix   string `json:"changedSuffix"`
	// Diffs 完整行内 diff 分段，仅在持有快照时填充（仅展示）
	Diffs []diffmatchpatch.Diff `json:"diffs,omitempty"`

	// Synced 最近一次保存是否已送达远端；LastSyncError 最近一次投递失败原因
	Synced        bool   `json:"synced"`
	LastSyncError string `json:"lastSyncError,omitempty"`
}

// timeConverters copier 类型转换器：time.Time -> timex.Time
var timeConverters = []copier.TypeConverter{
	{
		SrcType: time.Time{},
		DstType: timex.Time{},
		Fn: func(src interface{}) (interface{}, error) {
			t, _ := src.(time.Time)
			return timex.Time(t), nil
		},
	},
}

// domainToDTO 将领域模型转换为 DTO，并计算展示分段
func domainToDTO(record *domain.NoteRecord) *NoteDTO {
	if record == nil {
		return nil
	}

	dto := &NoteDTO{}
	_ = copier.CopyWithOption(dto, record, copier.Option{Converters: timeConverters})

	res := highlight.Highlight(record.PreviousContent, record.Content)
	dto.UnchangedPrefix = res.UnchangedPrefix
	dto.ChangedSuffix = res.ChangedSuffix
	if record.HasSnapshot() {
		dto.Diffs = highlight.Segments(record.PreviousContent, record.Content)
	}
	return dto
}
