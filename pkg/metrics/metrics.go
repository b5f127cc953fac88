// Package metrics exposes prometheus counters for the notes engine
// Package metrics 暴露笔记引擎的 prometheus 计数器
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LocalSaves 本地保存次数，按实体类型区分
	LocalSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notes_engine",
		Name:      "local_saves_total",
		Help:      "Committed local note saves.",
	}, []string{"entity_type"})

	// SnapshotRollovers 跨自然日触发的快照滚动次数
	SnapshotRollovers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notes_engine",
		Name:      "snapshot_rollovers_total",
		Help:      "Previous-content snapshots taken on day boundaries.",
	}, []string{"entity_type"})

	// RemoteSyncs 远端同步结果，按实体类型与结果区分
	RemoteSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notes_engine",
		Name:      "remote_syncs_total",
		Help:      "Best-effort remote sync attempts by outcome.",
	}, []string{"entity_type", "outcome"})

	// OrphansPruned 清理的孤儿记录数
	OrphansPruned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "notes_engine",
		Name:      "orphans_pruned_total",
		Help:      "Orphaned note records removed by the prune task.",
	})
)

// Sync outcome label values
// 同步结果标签取值
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeGone    = "gone"
	OutcomeSkipped = "skipped"
)
