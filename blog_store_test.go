package darkroom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPost() BlogPost {
	return BlogPost{
		Title:    "Golden Hour at the Pier",
		Content:  "Long exposure notes from last weekend.",
		Category: "landscape",
		Active:   true,
	}
}

func TestCreatePostDefaults(t *testing.T) {
	s := setupTestStore(t)

	created, err := s.CreatePost(testPost())
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "", created.Subtitle)
	assert.Equal(t, "after", created.SubtitlePlacement)
	assert.Equal(t, "Admin", created.Author)
	assert.Equal(t, StatusDraft, created.Status)
	assert.Zero(t, created.Views)
	assert.Zero(t, created.Likes)
	assert.True(t, created.Active)
	assert.Equal(t, "golden-hour-at-the-pier", created.Slug)
	assert.NotEmpty(t, created.PublishedAt)
	assert.NotEmpty(t, created.CreatedAt)
	assert.NotEmpty(t, created.UpdatedAt)
	assert.Empty(t, created.Tags)
	assert.Empty(t, created.Images)
	assert.Empty(t, created.SEO)
}

func TestCreatePostRequiresFields(t *testing.T) {
	s := setupTestStore(t)

	tests := []struct {
		name string
		post BlogPost
	}{
		{"missing title", BlogPost{Content: "c", Category: "studio"}},
		{"missing content", BlogPost{Title: "t", Category: "studio"}},
		{"missing category", BlogPost{Title: "t", Content: "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreatePost(tt.post)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}
}

func TestPostJSONColumnsRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	p := testPost()
	p.Tags = []string{"night", "long exposure", "water"}
	p.Images = []string{"/public/posts/golden/00.jpg", "/public/posts/golden/01.jpg"}
	p.SEO = map[string]string{"title": "Golden Hour", "og:type": "article"}

	created, err := s.CreatePost(p)
	require.NoError(t, err)
	assert.Equal(t, p.Tags, created.Tags)
	assert.Equal(t, p.Images, created.Images)
	assert.Equal(t, p.SEO, created.SEO)

	got, err := s.GetPostByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestPostJSONColumnsMalformedFallback(t *testing.T) {
	s := setupTestStore(t)

	created, err := s.CreatePost(testPost())
	require.NoError(t, err)

	// Corrupt the stored JSON text directly; reads must not fail.
	_, err = s.db.Exec("UPDATE posts SET tags = 'oops', seo = '[1,2]' WHERE id = ?", created.ID)
	require.NoError(t, err)

	got, err := s.GetPostByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Tags)
	assert.Equal(t, map[string]string{}, got.SEO)
}

func TestGetPostByIDAndSlugIdentical(t *testing.T) {
	s := setupTestStore(t)

	created, err := s.CreatePost(testPost())
	require.NoError(t, err)

	byID, err := s.GetPostByID(created.ID)
	require.NoError(t, err)
	bySlug, err := s.GetPostBySlug(created.Slug)
	require.NoError(t, err)
	assert.Equal(t, byID, bySlug)
}

func TestGetPostResolvesNumericKeyAsID(t *testing.T) {
	s := setupTestStore(t)

	p := testPost()
	p.Slug = "custom-slug"
	created, err := s.CreatePost(p)
	require.NoError(t, err)

	got, err := s.GetPost("custom-slug")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	got, err = s.GetPost("1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetPostByID(404)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPostBySlug("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func seedListFixture(t *testing.T, s *Store) {
	t.Helper()
	posts := []BlogPost{
		{Title: "Alpha", Content: "c", Category: "weddings", Author: "Mara", Status: StatusPublished,
			PublishedAt: "2024-01-01T00:00:00Z", Tags: []string{"film"}, Active: true},
		{Title: "Bravo", Content: "c", Category: "portrait", Author: "Mara", Status: StatusPublished,
			PublishedAt: "2024-02-01T00:00:00Z", Tags: []string{"studio", "film"}, Active: true},
		{Title: "Charlie", Content: "c", Category: "portrait", Author: "Iris", Status: StatusPublished,
			PublishedAt: "2024-03-01T00:00:00Z", Tags: []string{"digital"}, Active: true},
		{Title: "Draft", Content: "c", Category: "portrait", Author: "Iris", Status: StatusDraft,
			PublishedAt: "2024-04-01T00:00:00Z", Active: true},
	}
	for _, p := range posts {
		_, err := s.CreatePost(p)
		require.NoError(t, err)
	}
}

func TestListPostsDefaultsToPublished(t *testing.T) {
	s := setupTestStore(t)
	seedListFixture(t, s)

	got, err := s.ListPosts(PostFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Default order is published_at descending.
	assert.Equal(t, "Charlie", got[0].Title)
	assert.Equal(t, "Alpha", got[2].Title)

	all, err := s.ListPosts(PostFilter{Status: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	drafts, err := s.ListPosts(PostFilter{Status: StatusDraft})
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}

func TestListPostsFilters(t *testing.T) {
	s := setupTestStore(t)
	seedListFixture(t, s)

	byCategory, err := s.ListPosts(PostFilter{Category: "portrait"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	byAuthor, err := s.ListPosts(PostFilter{Author: "Mara"})
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	byTag, err := s.ListPosts(PostFilter{Tag: "film"})
	require.NoError(t, err)
	assert.Len(t, byTag, 2)

	none, err := s.ListPosts(PostFilter{Tag: "nonexistent"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListPostsSortAndLimit(t *testing.T) {
	s := setupTestStore(t)
	seedListFixture(t, s)

	got, err := s.ListPosts(PostFilter{SortBy: "title", SortOrder: "asc", Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Title)
	assert.Equal(t, "Bravo", got[1].Title)
}

func TestListPostsSortKeyAllowList(t *testing.T) {
	s := setupTestStore(t)
	seedListFixture(t, s)

	// A hostile sort key must not reach the SQL text; it falls back to the
	// default column.
	got, err := s.ListPosts(PostFilter{SortBy: "published_at; DROP TABLE posts--"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count))
	assert.Equal(t, 4, count)
}

func TestUpdatePostFullReplace(t *testing.T) {
	s := setupTestStore(t)

	created, err := s.CreatePost(testPost())
	require.NoError(t, err)

	replacement := BlogPost{
		Title:    "Reworked",
		Content:  "new body",
		Category: "studio",
		Tags:     []string{"fresh"},
		Status:   StatusPublished,
		Views:    12,
		Likes:    3,
		Active:   true,
	}
	updated, err := s.UpdatePost(created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, "Reworked", updated.Title)
	assert.Equal(t, "reworked", updated.Slug)
	assert.Equal(t, []string{"fresh"}, updated.Tags)
	assert.Equal(t, int64(12), updated.Views)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUpdatePostNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.UpdatePost(404, testPost())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePostIdempotent(t *testing.T) {
	s := setupTestStore(t)

	created, err := s.CreatePost(testPost())
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(created.ID))
	_, err = s.GetPostByID(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, s.DeletePost(created.ID))
}

func TestIncrementCounters(t *testing.T) {
	s := setupTestStore(t)

	created, err := s.CreatePost(testPost())
	require.NoError(t, err)

	require.NoError(t, s.IncrementViews(created.ID))
	require.NoError(t, s.IncrementViews(created.ID))
	require.NoError(t, s.IncrementLikes(created.ID))

	got, err := s.GetPostByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)
	assert.Equal(t, int64(1), got.Likes)

	assert.ErrorIs(t, s.IncrementViews(404), ErrNotFound)
	assert.ErrorIs(t, s.IncrementLikes(404), ErrNotFound)
}

func TestPublishDue(t *testing.T) {
	s := setupTestStore(t)

	due := testPost()
	due.Status = StatusScheduled
	due.PublishedAt = "2024-01-01T00:00:00Z"
	created, err := s.CreatePost(due)
	require.NoError(t, err)

	future := testPost()
	future.Title = "Future"
	future.Status = StatusScheduled
	future.PublishedAt = time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	notYet, err := s.CreatePost(future)
	require.NoError(t, err)

	n, err := s.PublishDue(time.Now().UTC().Format(time.RFC3339))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.GetPostByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, got.Status)

	still, err := s.GetPostByID(notYet.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, still.Status)
}
