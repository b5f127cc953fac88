package service

import (
	"context"
	"testing"
	"time"

	"github.com/propline/entity-notes-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedNote 直接写入一条记录
func seedNote(t *testing.T, repo domain.NoteRepository, entityType domain.EntityType, entityID, content string, editedAt time.Time) {
	t.Helper()
	require.NoError(t, repo.Put(context.Background(), &domain.NoteRecord{
		EntityType:   entityType,
		EntityID:     entityID,
		Content:      content,
		LastEditedAt: editedAt,
	}))
}

func testDirectories() domain.DirectorySet {
	return domain.DirectorySet{
		domain.EntityLandlord: domain.StaticDirectory{
			"ll-1": {DisplayName: "Margaret Okafor", NavPath: "/landlords/ll-1"},
			"ll-2": {DisplayName: "James Whitfield", NavPath: "/landlords/ll-2"},
		},
		domain.EntityProperty: domain.StaticDirectory{
			"p-1": {DisplayName: "14 Harcourt Road", NavPath: "/properties/p-1"},
		},
		domain.EntityApplicant: domain.StaticDirectory{
			"a-1": {DisplayName: "Priya Nair", NavPath: "/applicants/a-1"},
		},
		domain.EntityVendor: domain.StaticDirectory{},
	}
}

func TestListSortsAndSplitsByDay(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, time.Local)
	svc := NewAggregatorService(repo, nil, WithAggregatorClock(func() time.Time { return now }))

	seedNote(t, repo, domain.EntityLandlord, "ll-1", "Rent review due.", now.Add(-2*time.Hour))
	seedNote(t, repo, domain.EntityProperty, "p-1", "Boiler serviced.", now.Add(-30*time.Minute))
	seedNote(t, repo, domain.EntityApplicant, "a-1", "Viewing on Friday.", now.AddDate(0, 0, -3))

	view, err := svc.List(context.Background(), &NotesViewParams{Directories: testDirectories()})
	require.NoError(t, err)

	// 今日组按 lastEditedAt 倒序
	require.Len(t, view.Today, 2)
	assert.Equal(t, "p-1", view.Today[0].EntityID)
	assert.Equal(t, "ll-1", view.Today[1].EntityID)
	assert.True(t, view.Today[0].EditedToday)
	assert.Equal(t, "14 Harcourt Road", view.Today[0].DisplayName)
	assert.Equal(t, "/properties/p-1", view.Today[0].NavPath)

	require.Len(t, view.Earlier, 1)
	assert.Equal(t, "a-1", view.Earlier[0].EntityID)
	assert.False(t, view.Earlier[0].EditedToday)
}

func TestListDropsEmptyAndOrphanedNotes(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, time.Local)
	svc := NewAggregatorService(repo, nil, WithAggregatorClock(func() time.Time { return now }))

	seedNote(t, repo, domain.EntityLandlord, "ll-1", "Kept.", now)
	// 内容已清空的记录不出现在视图中
	seedNote(t, repo, domain.EntityLandlord, "ll-2", "", now)
	// 目录中无法解析的孤儿记录静默排除
	seedNote(t, repo, domain.EntityProperty, "p-deleted", "Orphaned.", now)

	view, err := svc.List(context.Background(), &NotesViewParams{Directories: testDirectories()})
	require.NoError(t, err)

	require.Len(t, view.Today, 1)
	assert.Equal(t, "ll-1", view.Today[0].EntityID)
	assert.Empty(t, view.Earlier)
}

func TestListFiltersByEntityType(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, time.Local)
	svc := NewAggregatorService(repo, nil, WithAggregatorClock(func() time.Time { return now }))

	seedNote(t, repo, domain.EntityLandlord, "ll-1", "Landlord note.", now)
	seedNote(t, repo, domain.EntityProperty, "p-1", "Property note.", now)

	view, err := svc.List(context.Background(), &NotesViewParams{
		Directories: testDirectories(),
		EntityType:  domain.EntityProperty,
	})
	require.NoError(t, err)

	require.Len(t, view.Today, 1)
	assert.Equal(t, domain.EntityProperty, view.Today[0].EntityType)
}

func TestListSearchMatchesNameAndContent(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, time.Local)
	svc := NewAggregatorService(repo, nil, WithAggregatorClock(func() time.Time { return now }))

	seedNote(t, repo, domain.EntityLandlord, "ll-1", "Rent review due.", now)
	seedNote(t, repo, domain.EntityLandlord, "ll-2", "Mentions boiler repair.", now)
	seedNote(t, repo, domain.EntityProperty, "p-1", "Quiet street.", now)

	// 大小写不敏感，展示名与内容都参与匹配
	view, err := svc.List(context.Background(), &NotesViewParams{
		Directories: testDirectories(),
		Search:      "BOILER",
	})
	require.NoError(t, err)
	require.Len(t, view.Today, 1)
	assert.Equal(t, "ll-2", view.Today[0].EntityID)

	view, err = svc.List(context.Background(), &NotesViewParams{
		Directories: testDirectories(),
		Search:      "harcourt",
	})
	require.NoError(t, err)
	require.Len(t, view.Today, 1)
	assert.Equal(t, "p-1", view.Today[0].EntityID)
}

func TestListEmptyStore(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAggregatorService(repo, nil)

	view, err := svc.List(context.Background(), &NotesViewParams{Directories: testDirectories()})
	require.NoError(t, err)
	assert.Empty(t, view.Today)
	assert.Empty(t, view.Earlier)

	// 参数为 nil 同样安全
	view, err = svc.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, view.Today)
	assert.Empty(t, view.Earlier)
}
