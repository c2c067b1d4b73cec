package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mengfw/inkwell/internal/apperr"
	"github.com/mengfw/inkwell/internal/models"
)

// ListOptions narrows and pages a post listing.
type ListOptions struct {
	Page          int
	PerPage       int
	CategorySlug  string
	Query         string
	PublishedOnly bool
}

const postColumns = `p.id, p.title, p.slug, p.content, p.summary, p.cover_image,
	p.is_published, p.is_from_file, p.file_path, p.view_count, p.tags,
	p.author_id, COALESCE(u.username, ''), p.created_at, p.updated_at`

// ListPosts returns one page of posts, newest first, with the total count
// before paging.
func (s *Store) ListPosts(ctx context.Context, opts ListOptions) ([]models.Post, int, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = 10
	}

	where := `WHERE 1=1`
	var args []any
	if opts.PublishedOnly {
		where += ` AND p.is_published = 1`
	}
	if opts.CategorySlug != "" {
		where += ` AND p.id IN (
			SELECT pc.post_id FROM post_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE c.slug = ?)`
		args = append(args, opts.CategorySlug)
	}
	if opts.Query != "" {
		where += ` AND (p.title LIKE ? OR p.content LIKE ?)`
		like := "%" + opts.Query + "%"
		args = append(args, like, like)
	}

	var total int
	countSQL := `SELECT count(*) FROM posts p ` + where
	if err := s.conn.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count posts: %w", err)
	}

	listSQL := `SELECT ` + postColumns + `
		FROM posts p LEFT JOIN users u ON u.id = p.author_id ` + where + `
		ORDER BY p.created_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, opts.PerPage, (opts.Page-1)*opts.PerPage)

	rows, err := s.conn.QueryContext(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range posts {
		cats, err := s.postCategories(ctx, posts[i].ID)
		if err != nil {
			return nil, 0, err
		}
		posts[i].Categories = cats
	}
	return posts, total, nil
}

// PostBySlug returns a single post with its categories.
func (s *Store) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.onePost(ctx, `WHERE p.slug = ?`, slug)
}

// PostByID returns a single post with its categories.
func (s *Store) PostByID(ctx context.Context, id int64) (*models.Post, error) {
	return s.onePost(ctx, `WHERE p.id = ?`, id)
}

func (s *Store) onePost(ctx context.Context, where string, arg any) (*models.Post, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+postColumns+`
		FROM posts p LEFT JOIN users u ON u.id = p.author_id `+where, arg)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cats, err := s.postCategories(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Categories = cats
	return &p, nil
}

// IncrementViews bumps a post's view counter.
func (s *Store) IncrementViews(ctx context.Context, id int64) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: increment views: %w", err)
	}
	return nil
}

// CreatePost inserts an editor-authored post and fills in its ID.
func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO posts (title, slug, content, summary, cover_image,
			is_published, is_from_file, file_path, tags, author_id)
		VALUES (?, ?, ?, ?, ?, ?, 0, '', ?, ?)`,
		p.Title, p.Slug, p.Content, p.Summary, p.CoverImage,
		p.Published, tagsToJSON(p.Tags), p.AuthorID)
	if err != nil {
		return fmt.Errorf("store: create post: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: post id: %w", err)
	}
	return nil
}

// UpdatePost overwrites an editor-visible post's fields.
func (s *Store) UpdatePost(ctx context.Context, p *models.Post) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, content = ?, summary = ?, cover_image = ?,
			is_published = ?, tags = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Title, p.Content, p.Summary, p.CoverImage,
		p.Published, tagsToJSON(p.Tags), p.ID)
	if err != nil {
		return fmt.Errorf("store: update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeletePost removes a post by ID.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SlugExists reports whether any post already owns the slug.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM posts WHERE slug = ?`, slug).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: slug exists: %w", err)
	}
	return n > 0, nil
}

// SetPostCategories replaces a post's category links.
func (s *Store) SetPostCategories(ctx context.Context, postID int64, categoryIDs []int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("store: clear categories: %w", err)
	}
	for _, cid := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO post_categories (post_id, category_id) VALUES (?, ?)`,
			postID, cid); err != nil {
			return fmt.Errorf("store: link category: %w", err)
		}
	}
	return tx.Commit()
}

// PostStats summarizes the posts table for the admin dashboard.
type PostStats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	FromFile  int `json:"from_file"`
	Views     int `json:"views"`
}

// Stats returns aggregate post counts.
func (s *Store) Stats(ctx context.Context) (PostStats, error) {
	var st PostStats
	err := s.conn.QueryRowContext(ctx, `
		SELECT count(*),
			COALESCE(sum(is_published), 0),
			COALESCE(sum(is_from_file), 0),
			COALESCE(sum(view_count), 0)
		FROM posts`).Scan(&st.Total, &st.Published, &st.FromFile, &st.Views)
	if err != nil {
		return st, fmt.Errorf("store: stats: %w", err)
	}
	return st, nil
}

func (s *Store) postCategories(ctx context.Context, postID int64) ([]models.Category, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT c.id, c.name, c.slug, c.description, c.color, c.icon, c.sort_order
		FROM categories c
		JOIN post_categories pc ON pc.category_id = c.id
		WHERE pc.post_id = ?
		ORDER BY c.sort_order, c.name`, postID)
	if err != nil {
		return nil, fmt.Errorf("store: post categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color, &c.Icon, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (models.Post, error) {
	var p models.Post
	var tags string
	var authorID sql.NullInt64
	err := r.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Summary, &p.CoverImage,
		&p.Published, &p.FromFile, &p.FilePath, &p.ViewCount, &tags,
		&authorID, &p.Author, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if authorID.Valid {
		p.AuthorID = &authorID.Int64
	}
	p.Tags = tagsFromJSON(tags)
	return p, nil
}

func tagsToJSON(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

func tagsFromJSON(raw string) []string {
	var tags []string
	_ = json.Unmarshal([]byte(raw), &tags)
	return tags
}
