package darkroom

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

// postSortColumns maps client-facing sort keys to column references. Sort
// keys, direction, and limit are never interpolated from request input:
// unknown keys fall back to published_at, direction is constrained to
// ASC/DESC, and limit is bound as a parameter.
var postSortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"publishedAt": "published_at",
	"title":       "title",
	"views":       "views",
	"likes":       "likes",
}

// PostFilter carries the query-string parameters of a blog listing.
type PostFilter struct {
	Status    string // default "published"; "all" disables the status filter
	Category  string
	Author    string
	Tag       string
	SortBy    string
	SortOrder string
	Limit     int
}

// IsDefault reports whether the filter matches the unparameterized listing,
// which is served from the cache.
func (f PostFilter) IsDefault() bool {
	return (f.Status == "" || f.Status == StatusPublished) &&
		f.Category == "" && f.Author == "" && f.Tag == "" &&
		f.SortBy == "" && f.SortOrder == "" && f.Limit == 0
}

const postColumns = `id, title, subtitle, subtitle_placement, content, excerpt,
	cover_image, category, tags, author, published_at, status, views, likes,
	images, seo, active, slug, folder_path, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (BlogPost, error) {
	var p BlogPost
	var tags, images, seo string
	var active int
	err := row.Scan(&p.ID, &p.Title, &p.Subtitle, &p.SubtitlePlacement,
		&p.Content, &p.Excerpt, &p.CoverImage, &p.Category, &tags, &p.Author,
		&p.PublishedAt, &p.Status, &p.Views, &p.Likes, &images, &seo, &active,
		&p.Slug, &p.FolderPath, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return BlogPost{}, err
	}
	p.Tags = decodeStrings(tags)
	p.Images = decodeStrings(images)
	p.SEO = decodeStringMap(seo)
	p.Active = intToBool(active)
	return p, nil
}

// ListPosts returns posts matching the filter, fully decoded.
func (s *Store) ListPosts(f PostFilter) ([]BlogPost, error) {
	var where []string
	var args []any
	status := f.Status
	if status == "" {
		status = StatusPublished
	}
	if status != "all" {
		where = append(where, "status = ?")
		args = append(args, status)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Author != "" {
		where = append(where, "author = ?")
		args = append(args, f.Author)
	}
	if f.Tag != "" {
		// Containment match against the JSON-encoded tags column.
		where = append(where, "tags LIKE ?")
		args = append(args, `%"`+f.Tag+`"%`)
	}

	column, ok := postSortColumns[f.SortBy]
	if !ok {
		column = "published_at"
	}
	direction := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		direction = "ASC"
	}

	query := "SELECT " + postColumns + " FROM posts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + column + " " + direction
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPost resolves key as a numeric ID when it parses as one, otherwise as a
// slug. Returns ErrNotFound when no row matches.
func (s *Store) GetPost(key string) (BlogPost, error) {
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		return s.GetPostByID(id)
	}
	return s.GetPostBySlug(key)
}

// GetPostByID returns a single post by ID.
func (s *Store) GetPostByID(id int64) (BlogPost, error) {
	row := s.db.QueryRow("SELECT "+postColumns+" FROM posts WHERE id = ?", id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

// GetPostBySlug returns a single post by slug. Slug uniqueness is
// caller-assumed; the oldest match wins if duplicates exist.
func (s *Store) GetPostBySlug(slug string) (BlogPost, error) {
	row := s.db.QueryRow("SELECT "+postColumns+" FROM posts WHERE slug = ? ORDER BY id LIMIT 1", slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

// normalizePost validates required fields and applies creation defaults.
func normalizePost(p *BlogPost, now string) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return validationf("title is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		return validationf("content is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		return validationf("category is required")
	}
	if p.SubtitlePlacement == "" {
		p.SubtitlePlacement = "after"
	}
	if p.Author == "" {
		p.Author = "Admin"
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.PublishedAt == "" {
		p.PublishedAt = now
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	return nil
}

// CreatePost inserts a new post and returns the stored, fully decoded record.
// Counters always start at zero.
func (s *Store) CreatePost(p BlogPost) (BlogPost, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	if err := normalizePost(&p, now); err != nil {
		return BlogPost{}, err
	}
	res, err := s.db.Exec(`INSERT INTO posts (title, subtitle, subtitle_placement,
		content, excerpt, cover_image, category, tags, author, published_at,
		status, views, likes, images, seo, active, slug, folder_path,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Subtitle, p.SubtitlePlacement, p.Content, p.Excerpt,
		p.CoverImage, p.Category, encodeStrings(p.Tags), p.Author,
		p.PublishedAt, p.Status, encodeStrings(p.Images),
		encodeStringMap(p.SEO), boolToInt(p.Active), p.Slug, p.FolderPath,
		now, now)
	if err != nil {
		return BlogPost{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return BlogPost{}, err
	}
	return s.GetPostByID(id)
}

// UpdatePost replaces the full record at id, applying the same defaulting
// rules as create, and bumps updated_at. Returns ErrNotFound when the row is
// absent.
func (s *Store) UpdatePost(id int64, p BlogPost) (BlogPost, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	if err := normalizePost(&p, now); err != nil {
		return BlogPost{}, err
	}
	res, err := s.db.Exec(`UPDATE posts SET title = ?, subtitle = ?,
		subtitle_placement = ?, content = ?, excerpt = ?, cover_image = ?,
		category = ?, tags = ?, author = ?, published_at = ?, status = ?,
		views = ?, likes = ?, images = ?, seo = ?, active = ?, slug = ?,
		folder_path = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Subtitle, p.SubtitlePlacement, p.Content, p.Excerpt,
		p.CoverImage, p.Category, encodeStrings(p.Tags), p.Author,
		p.PublishedAt, p.Status, p.Views, p.Likes, encodeStrings(p.Images),
		encodeStringMap(p.SEO), boolToInt(p.Active), p.Slug, p.FolderPath,
		now, id)
	if err != nil {
		return BlogPost{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return BlogPost{}, err
	}
	if n == 0 {
		return BlogPost{}, ErrNotFound
	}
	return s.GetPostByID(id)
}

// DeletePost removes a post by ID. Deleting an absent post is not an error.
func (s *Store) DeletePost(id int64) error {
	_, err := s.db.Exec("DELETE FROM posts WHERE id = ?", id)
	return err
}

// IncrementViews bumps the view counter for a post.
func (s *Store) IncrementViews(id int64) error {
	res, err := s.db.Exec("UPDATE posts SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// IncrementLikes bumps the like counter for a post.
func (s *Store) IncrementLikes(id int64) error {
	res, err := s.db.Exec("UPDATE posts SET likes = likes + 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PublishDue flips scheduled posts whose publish time has passed to
// published. now must be an RFC 3339 UTC timestamp; RFC 3339 strings in a
// single zone compare correctly as text.
func (s *Store) PublishDue(now string) (int64, error) {
	res, err := s.db.Exec(`UPDATE posts SET status = ?, updated_at = ?
		WHERE status = ? AND published_at <> '' AND published_at <= ?`,
		StatusPublished, now, StatusScheduled, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
