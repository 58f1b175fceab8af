package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-counselor/internal/database"
	"github.com/iyunix/go-counselor/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := database.Connect(database.Options{URL: ":memory:", SQLLogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, conn.EnsureInitialized(context.Background()))
	t.Cleanup(func() { _ = conn.Close() })
	return conn.DB
}

func TestChatRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(newTestDB(t))

	created, err := repo.Create(ctx, &domain.ChatSession{Title: "Career pivot"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Career pivot", found.Title)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrChatSessionNotFound)

	exists, err := repo.ExistsByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestChatRepository_Create_Validation(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))

	_, err := repo.Create(context.Background(), &domain.ChatSession{Title: "  "})
	assert.Error(t, err)
}

func TestChatRepository_FindPage(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(newTestDB(t))
	owner := "user-1"

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"oldest", "middle", "newest"} {
		s := &domain.ChatSession{Title: title, UserID: &owner}
		_, err := repo.Create(ctx, s)
		require.NoError(t, err)
		require.NoError(t, repo.TouchUpdatedAt(ctx, s.ID, base.Add(time.Duration(i)*time.Minute)))
	}
	_, err := repo.Create(ctx, &domain.ChatSession{Title: "anonymous"})
	require.NoError(t, err)

	t.Run("filters by owner and orders by activity", func(t *testing.T) {
		page, err := repo.FindPage(ctx, &owner, 10, 0)
		require.NoError(t, err)
		require.Len(t, page, 3)
		assert.Equal(t, []string{"newest", "middle", "oldest"}, titles(page))
	})

	t.Run("offset and limit", func(t *testing.T) {
		page, err := repo.FindPage(ctx, &owner, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"middle"}, titles(page))
	})

	t.Run("nil owner lists everything", func(t *testing.T) {
		page, err := repo.FindPage(ctx, nil, 100, 0)
		require.NoError(t, err)
		assert.Len(t, page, 4)

		count, err := repo.CountByUserID(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
	})

	t.Run("rejects out of range paging", func(t *testing.T) {
		_, err := repo.FindPage(ctx, nil, 0, 0)
		assert.Error(t, err)
		_, err = repo.FindPage(ctx, nil, 101, 0)
		assert.Error(t, err)
		_, err = repo.FindPage(ctx, nil, 10, -1)
		assert.Error(t, err)
	})
}

func TestChatRepository_UpdateTitle(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(newTestDB(t))

	s, err := repo.Create(ctx, &domain.ChatSession{Title: domain.DefaultSessionTitle})
	require.NoError(t, err)
	before := s.UpdatedAt

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, repo.UpdateTitle(ctx, s.ID, "Resume Review"))

	found, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Resume Review", found.Title)
	assert.True(t, found.UpdatedAt.After(before))

	assert.ErrorIs(t, repo.UpdateTitle(ctx, "missing", "x"), ErrChatSessionNotFound)
}

func TestChatRepository_DeleteWithMessages(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewChatRepository(db)

	s, err := repo.Create(ctx, &domain.ChatSession{Title: "to delete"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Message{SessionID: s.ID, Role: domain.RoleUser, Content: "hello"}).Error)

	require.NoError(t, repo.DeleteWithMessages(ctx, s.ID))

	var remaining int64
	require.NoError(t, db.Model(&domain.Message{}).Where("session_id = ?", s.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	assert.ErrorIs(t, repo.DeleteWithMessages(ctx, s.ID), ErrChatSessionNotFound)
}

func titles(sessions []domain.ChatSession) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Title)
	}
	return out
}
