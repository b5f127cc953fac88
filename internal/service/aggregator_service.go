package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/propline/entity-notes-engine/internal/domain"
	"github.com/propline/entity-notes-engine/pkg/code"
	"github.com/propline/entity-notes-engine/pkg/timex"

	"go.uber.org/zap"
)

// AggregatorService 跨实体笔记聚合视图服务
type AggregatorService interface {
	// List builds the cross-entity notes view: empty-content records are
	// dropped, records whose entity cannot be resolved in the supplied
	// directories are silently excluded (orphans), the rest are joined with
	// display name and navigation path, filtered, sorted by lastEditedAt
	// descending and split into edited-today vs earlier.
	//
	// List 构建跨实体笔记视图：过滤空内容记录，目录中无法解析的记录
	// （孤儿）静默排除，其余联结展示名与导航路径，过滤后按
	// lastEditedAt 倒序排列，并切分为"今日编辑"与"更早"两组。
	List(ctx context.Context, params *NotesViewParams) (*NotesView, error)
}

// NotesViewParams 聚合视图查询参数
type NotesViewParams struct {
	// Directories 调用方视图提供的实体目录集合
	Directories domain.DirectorySet
	// EntityType 按实体类型过滤，空值表示不过滤
	EntityType domain.EntityType
	// Search 展示名与笔记内容上的大小写不敏感子串过滤
	Search string
}

// NotesViewItem 聚合视图中的一条笔记
type NotesViewItem struct {
	NoteDTO

	// DisplayName 实体展示名
	DisplayName string `json:"displayName"`
	// NavPath 前端导航目标
	NavPath string `json:"navPath"`
	// EditedToday 是否在今天（本地自然日）编辑过
	EditedToday bool `json:"editedToday"`
}

// NotesView 聚合视图结果
type NotesView struct {
	// Today 今日编辑过的笔记
	Today []*NotesViewItem `json:"today"`
	// Earlier 其余笔记
	Earlier []*NotesViewItem `json:"earlier"`
}

// aggregatorService 实现 AggregatorService 接口
type aggregatorService struct {
	repo    domain.NoteRepository
	logger  *zap.Logger
	nowFunc func() time.Time
}

// AggregatorOption AggregatorService 可选配置
type AggregatorOption func(*aggregatorService)

// WithAggregatorClock 注入时钟
func WithAggregatorClock(now func() time.Time) AggregatorOption {
	return func(s *aggregatorService) {
		s.nowFunc = now
	}
}

// NewAggregatorService 创建 AggregatorService 实例
func NewAggregatorService(repo domain.NoteRepository, l *zap.Logger, opts ...AggregatorOption) AggregatorService {
	if l == nil {
		l = zap.NewNop()
	}
	s := &aggregatorService{
		repo:    repo,
		logger:  l,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List 构建聚合视图，见接口说明
func (s *aggregatorService) List(ctx context.Context, params *NotesViewParams) (*NotesView, error) {
	if params == nil {
		params = &NotesViewParams{}
	}

	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	now := s.nowFunc()
	search := strings.ToLower(strings.TrimSpace(params.Search))

	items := make([]*NotesViewItem, 0, len(records))
	for _, record := range records {
		if record.IsEmpty() {
			continue
		}
		if params.EntityType != "" && record.EntityType != params.EntityType {
			continue
		}

		entry, ok := params.Directories.Resolve(record.EntityType, record.EntityID)
		if !ok {
			// 孤儿记录：实体已无法解析，静默排除
			continue
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(entry.DisplayName), search) &&
			!strings.Contains(strings.ToLower(record.Content), search) {
			continue
		}

		items = append(items, &NotesViewItem{
			NoteDTO:     *domainToDTO(record),
			DisplayName: entry.DisplayName,
			NavPath:     entry.NavPath,
			EditedToday: timex.SameDay(record.LastEditedAt, now),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LastEditedAt.Time().After(items[j].LastEditedAt.Time())
	})

	view := &NotesView{
		Today:   make([]*NotesViewItem, 0),
		Earlier: make([]*NotesViewItem, 0),
	}
	for _, item := range items {
		if item.EditedToday {
			view.Today = append(view.Today, item)
		} else {
			view.Earlier = append(view.Earlier, item)
		}
	}
	return view, nil
}
