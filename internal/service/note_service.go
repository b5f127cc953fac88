package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/propline/entity-notes-engine/internal/domain"
	"github.com/propline/entity-notes-engine/pkg/code"
	"github.com/propline/entity-notes-engine/pkg/debounce"
	"github.com/propline/entity-notes-engine/pkg/logger"
	"github.com/propline/entity-notes-engine/pkg/metrics"
	"github.com/propline/entity-notes-engine/pkg/timex"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// NoteService 定义笔记业务服务接口
type NoteService interface {
	// Get 获取单条笔记
	Get(ctx context.Context, entityType domain.EntityType, entityID string) (*NoteDTO, error)

	// Load reconciles the stored record against an optional remote value at
	// view-open time. A non-nil remoteContent that differs from the local
	// content is authoritative: it replaces the local content and is
	// persisted. This may silently discard an unsynced local edit — accepted
	// trade-off, this subsystem does no multi-writer conflict resolution.
	// Returns nil when no note exists for the entity.
	//
	// Load 在打开视图时，用可选的远端值对已存储记录做一次调和。
	// 远端值存在且与本地不同时以远端为准（覆盖并持久化）。
	// 这可能悄悄丢弃一次未同步的本地编辑，属于接受的取舍。
	// 实体没有笔记时返回 nil。
	Load(ctx context.Context, entityType domain.EntityType, entityID string, remoteContent *string) (*NoteDTO, error)

	// Save commits content immediately: snapshot rollover on day boundary,
	// synchronous local persist, then best-effort async remote push.
	// Equal content is a no-op.
	// Save 立即提交内容：跨自然日滚动快照，同步本地持久化，
	// 然后尽力异步远端投递。内容未变时为空操作。
	Save(ctx context.Context, entityType domain.EntityType, entityID string, content string) (*NoteDTO, error)

	// SaveDebounced schedules a save after the inactivity window; a burst of
	// calls for one entity collapses into a single Save. Errors from the
	// delayed save are delivered to onErr.
	// SaveDebounced 在静默窗口后提交保存，同一实体的连续调用合并为一次。
	// 延迟保存的错误通过 onErr 回调送达。
	SaveDebounced(entityType domain.EntityType, entityID string, content string, onErr func(error)) error

	// Flush 立即执行实体的待保存编辑，绕过去抖延迟
	Flush(entityType domain.EntityType, entityID string) error

	// Close flushes every pending edit synchronously; the teardown path
	// Close 同步冲刷全部待保存编辑，卸载路径
	Close(ctx context.Context) error
}

// syncState 单条记录的远端同步状态
type syncState struct {
	synced  bool
	lastErr string
}

// noteService 实现 NoteService 接口
type noteService struct {
	repo      domain.NoteRepository
	remote    RemotePusher
	scheduler *debounce.Scheduler
	logger    *zap.Logger
	sf        *singleflight.Group

	// nowFunc 可注入时钟，测试用
	nowFunc func() time.Time

	syncMu     sync.Mutex
	syncStates map[string]*syncState
}

// NoteServiceOption NoteService 可选配置
type NoteServiceOption func(*noteService)

// WithClock 注入时钟
func WithClock(now func() time.Time) NoteServiceOption {
	return func(s *noteService) {
		s.nowFunc = now
	}
}

// NewNoteService 创建 NoteService 实例
// remote 为 nil 时跳过远端投递（纯本地模式）
func NewNoteService(repo domain.NoteRepository, remotePusher RemotePusher, scheduler *debounce.Scheduler, l *zap.Logger, opts ...NoteServiceOption) NoteService {
	if l == nil {
		l = zap.NewNop()
	}
	if scheduler == nil {
		scheduler = debounce.New(nil, l)
	}
	s := &noteService{
		repo:       repo,
		remote:     remotePusher,
		scheduler:  scheduler,
		logger:     l,
		sf:         &singleflight.Group{},
		nowFunc:    time.Now,
		syncStates: make(map[string]*syncState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func noteKey(entityType domain.EntityType, entityID string) string {
	return string(entityType) + ":" + entityID
}

// validate 校验实体键
func validate(entityType domain.EntityType, entityID string) error {
	if !entityType.Valid() {
		return code.ErrorInvalidEntityType
	}
	if entityID == "" {
		return code.ErrorInvalidEntityID
	}
	return nil
}

// Get 获取单条笔记
func (s *noteService) Get(ctx context.Context, entityType domain.EntityType, entityID string) (*NoteDTO, error) {
	if err := validate(entityType, entityID); err != nil {
		return nil, err
	}

	record, err := s.repo.Get(ctx, entityType, entityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return s.withSyncState(domainToDTO(record)), nil
}

// Load 调和本地记录与远端值，见接口说明
func (s *noteService) Load(ctx context.Context, entityType domain.EntityType, entityID string, remoteContent *string) (*NoteDTO, error) {
	if err := validate(entityType, entityID); err != nil {
		return nil, err
	}

	// 并发打开同一实体时合并为一次调和
	v, err, _ := s.sf.Do(noteKey(entityType, entityID), func() (interface{}, error) {
		return s.load(ctx, entityType, entityID, remoteContent)
	})
	if err != nil {
		return nil, err
	}
	dto, _ := v.(*NoteDTO)
	return dto, nil
}

func (s *noteService) load(ctx context.Context, entityType domain.EntityType, entityID string, remoteContent *string) (*NoteDTO, error) {
	record, err := s.repo.Get(ctx, entityType, entityID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	// 没有远端值时本地记录原样生效
	if remoteContent == nil {
		return s.withSyncState(domainToDTO(record)), nil
	}

	if record == nil {
		if *remoteContent == "" {
			// 本地远端皆无内容，维持"无笔记"状态
			return nil, nil
		}
		record = &domain.NoteRecord{
			EntityType: entityType,
			EntityID:   entityID,
		}
	} else if record.Content == *remoteContent {
		s.markSynced(noteKey(entityType, entityID))
		return s.withSyncState(domainToDTO(record)), nil
	}

	// 远端为准：覆盖本地内容并持久化
	record.Content = *remoteContent
	record.LastEditedAt = s.nowFunc()
	if record.PreviousContent == record.Content {
		record.PreviousContent = ""
		record.PreviousSnapshotAt = time.Time{}
	}

	if err := s.repo.Put(ctx, record); err != nil {
		return nil, code.ErrorLocalSave.WithDetails(err.Error())
	}
	s.markSynced(noteKey(entityType, entityID))

	s.logger.Info("remote content adopted on load",
		zap.String(logger.FieldEntityType, string(entityType)),
		zap.String(logger.FieldEntityID, entityID),
		zap.String(logger.FieldMethod, "noteService.Load"))

	return s.withSyncState(domainToDTO(record)), nil
}

// Save 提交保存，见接口说明
func (s *noteService) Save(ctx context.Context, entityType domain.EntityType, entityID string, content string) (*NoteDTO, error) {
	if err := validate(entityType, entityID); err != nil {
		return nil, err
	}

	now := s.nowFunc()

	record, err := s.repo.Get(ctx, entityType, entityID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	if record == nil {
		// 首次保存：建立记录，无快照
		record = &domain.NoteRecord{
			EntityType:   entityType,
			EntityID:     entityID,
			Content:      content,
			LastEditedAt: now,
		}
	} else {
		if record.Content == content {
			// 内容未变，空操作
			return s.withSyncState(domainToDTO(record)), nil
		}

		// 跨自然日的首次变更：当前内容滚入快照。
		// 快照时间取被滚动内容的提交时间，即它最后一次被编辑的时刻。
		if !timex.SameDay(record.LastEditedAt, now) {
			record.PreviousContent = record.Content
			record.PreviousSnapshotAt = record.LastEditedAt
			metrics.SnapshotRollovers.WithLabelValues(string(entityType)).Inc()
		}

		record.Content = content
		record.LastEditedAt = now

		// 快照与当前内容相同则不保留（内容被改回了昨日状态）
		if record.PreviousContent == record.Content {
			record.PreviousContent = ""
			record.PreviousSnapshotAt = time.Time{}
		}
	}

	// 本地持久化是唯一的持久性保证，失败必须上抛给编辑界面
	if err := s.repo.Put(ctx, record); err != nil {
		if errors.Is(err, code.ErrorStaleWrite) {
			return nil, err
		}
		return nil, code.ErrorLocalSave.WithDetails(err.Error())
	}
	metrics.LocalSaves.WithLabelValues(string(entityType)).Inc()

	s.pushRemote(record)

	return s.withSyncState(domainToDTO(record)), nil
}

// SaveDebounced 去抖保存，见接口说明
func (s *noteService) SaveDebounced(entityType domain.EntityType, entityID string, content string, onErr func(error)) error {
	if err := validate(entityType, entityID); err != nil {
		return err
	}

	return s.scheduler.Schedule(noteKey(entityType, entityID), func() error {
		_, err := s.Save(context.Background(), entityType, entityID, content)
		if err != nil && onErr != nil {
			onErr(err)
		}
		return err
	})
}

// Flush 立即执行实体的待保存编辑
func (s *noteService) Flush(entityType domain.EntityType, entityID string) error {
	return s.scheduler.Flush(noteKey(entityType, entityID))
}

// Close 冲刷全部待保存编辑
func (s *noteService) Close(ctx context.Context) error {
	return s.scheduler.Close(ctx)
}

// pushRemote 异步投递到远端，结果只更新同步状态，绝不回滚本地保存
func (s *noteService) pushRemote(record *domain.NoteRecord) {
	key := record.Key()

	s.syncMu.Lock()
	s.syncStates[key] = &syncState{synced: false}
	s.syncMu.Unlock()

	if s.remote == nil {
		return
	}

	s.remote.Push(record, func(err error) {
		s.syncMu.Lock()
		defer s.syncMu.Unlock()
		if err != nil {
			s.syncStates[key] = &syncState{synced: false, lastErr: err.Error()}
			return
		}
		s.syncStates[key] = &syncState{synced: true}
	})
}

// markSynced 标记记录与远端一致
func (s *noteService) markSynced(key string) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	s.syncStates[key] = &syncState{synced: true}
}

// withSyncState 填充 DTO 的同步状态
func (s *noteService) withSyncState(dto *NoteDTO) *NoteDTO {
	if dto == nil {
		return nil
	}
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	if st, ok := s.syncStates[noteKey(dto.EntityType, dto.EntityID)]; ok {
		dto.Synced = st.synced
		dto.LastSyncError = st.lastErr
	}
	return dto
}
