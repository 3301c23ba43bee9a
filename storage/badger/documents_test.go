package badger

import (
	"context"
	"testing"

	"github.com/poiesic/energuide/core"
	"github.com/poiesic/energuide/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) storage.DocumentRepository {
	t.Helper()
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAddDocuments(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	docs, err := repo.AddDocuments(ctx,
		&core.Document{Content: "REC는 신재생에너지 공급인증서입니다.", Metadata: map[string]string{core.MetaTitle: "REC"}},
		&core.Document{Content: "RPS는 공급의무화 제도입니다."},
	)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.NotZero(t, docs[0].Id)
	assert.NotEqual(t, docs[0].Id, docs[1].Id)
	assert.Less(t, docs[0].Id, docs[1].Id)
	assert.Equal(t, core.ContentHash(docs[0].Content), docs[0].ContentHash)
	assert.False(t, docs[0].InsertedAt.IsZero())
	assert.Equal(t, docs[0].InsertedAt, docs[0].UpdatedAt)

	got, err := repo.GetDocument(ctx, docs[0].Id)
	require.NoError(t, err)
	assert.Equal(t, docs[0].Content, got.Content)
	assert.Equal(t, "REC", got.Meta(core.MetaTitle))
}

func TestAddDocuments_RejectsBlankContent(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.AddDocuments(context.Background(), &core.Document{Content: "   "})
	assert.ErrorIs(t, err, core.ErrInvalidDocument)

	count, err := repo.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetDocument_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetDocument(context.Background(), core.ID(999))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetDocuments_SkipsMissing(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	docs, err := repo.AddDocuments(ctx, &core.Document{Content: "one"}, &core.Document{Content: "two"})
	require.NoError(t, err)

	got, err := repo.GetDocuments(ctx, docs[0].Id, core.ID(12345), docs[1].Id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Content)
	assert.Equal(t, "two", got[1].Content)
}

func TestUpdateDocuments(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	docs, err := repo.AddDocuments(ctx, &core.Document{Content: "old content"})
	require.NoError(t, err)
	oldHash := docs[0].ContentHash
	inserted := docs[0].InsertedAt

	docs[0].Content = "new content"
	docs[0].Vector = []float32{1, 2, 3}
	updated, err := repo.UpdateDocuments(ctx, docs[0])
	require.NoError(t, err)
	assert.Equal(t, inserted, updated[0].InsertedAt)
	assert.False(t, updated[0].UpdatedAt.Before(inserted))

	got, err := repo.GetDocument(ctx, docs[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "new content", got.Content)
	assert.Equal(t, []float32{1, 2, 3}, got.Vector)

	has, err := repo.HasContent(ctx, oldHash)
	require.NoError(t, err)
	assert.False(t, has)

	has, err = repo.HasContent(ctx, core.ContentHash("new content"))
	require.NoError(t, err)
	assert.True(t, has)
}

func TestUpdateDocuments_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.UpdateDocuments(context.Background(), &core.Document{Id: 77, Content: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteDocuments(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	docs, err := repo.AddDocuments(ctx, &core.Document{Content: "keep"}, &core.Document{Content: "drop"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteDocuments(ctx, docs[1].Id))

	_, err = repo.GetDocument(ctx, docs[1].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	has, err := repo.HasContent(ctx, core.ContentHash("drop"))
	require.NoError(t, err)
	assert.False(t, has)

	count, err := repo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, repo.DeleteDocuments(ctx, docs[1].Id), storage.ErrNotFound)
}

func TestDeleteDocuments_SharedHashKeepsIndex(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.AddDocuments(ctx, &core.Document{Content: "same"})
	require.NoError(t, err)
	second, err := repo.AddDocuments(ctx, &core.Document{Content: " same "})
	require.NoError(t, err)

	// The index points at the newest copy; deleting the older one leaves it intact.
	require.NoError(t, repo.DeleteDocuments(ctx, first[0].Id))
	has, err := repo.HasContent(ctx, core.ContentHash("same"))
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, repo.DeleteDocuments(ctx, second[0].Id))
	has, err = repo.HasContent(ctx, core.ContentHash("same"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestListDocuments_Pagination(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, c := range []string{"a", "b", "c", "d", "e"} {
		_, err := repo.AddDocuments(ctx, &core.Document{Content: c})
		require.NoError(t, err)
	}

	var seen []string
	var after core.ID
	for {
		page, err := repo.ListDocuments(ctx, after, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		assert.LessOrEqual(t, len(page), 2)
		for _, d := range page {
			assert.Greater(t, d.Id, after)
			seen = append(seen, d.Content)
		}
		after = page[len(page)-1].Id
	}

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, seen)
}

func TestListDocuments_InvalidLimit(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.ListDocuments(context.Background(), 0, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestHasContent_TrimsWhitespace(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.AddDocuments(ctx, &core.Document{Content: "  태양광 보조금  "})
	require.NoError(t, err)

	has, err := repo.HasContent(ctx, core.ContentHash("태양광 보조금"))
	require.NoError(t, err)
	assert.True(t, has)
}

func TestFindByContent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	added, err := repo.AddDocuments(ctx, &core.Document{
		Content:  "REC 발급 절차",
		Metadata: map[string]string{core.MetaURL: "https://knrec.or.kr/faq/1"},
	})
	require.NoError(t, err)

	found, err := repo.FindByContent(ctx, core.ContentHash("REC 발급 절차"))
	require.NoError(t, err)
	assert.Equal(t, added[0].Id, found.Id)
	assert.Equal(t, "https://knrec.or.kr/faq/1", found.Meta(core.MetaURL))

	_, err = repo.FindByContent(ctx, core.ContentHash("없는 문서"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestClear(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	docs, err := repo.AddDocuments(ctx, &core.Document{Content: "x"}, &core.Document{Content: "y"})
	require.NoError(t, err)

	require.NoError(t, repo.Clear(ctx))

	count, err := repo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	has, err := repo.HasContent(ctx, core.ContentHash("x"))
	require.NoError(t, err)
	assert.False(t, has)

	// IDs keep increasing after a clear.
	more, err := repo.AddDocuments(ctx, &core.Document{Content: "z"})
	require.NoError(t, err)
	assert.Greater(t, more[0].Id, docs[1].Id)
}
