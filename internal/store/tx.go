package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mengfw/inkwell/internal/models"
)

// Tx is an explicit transaction handle. The reconciler runs an entire
// scan pass against one Tx so that category creations are visible to
// later lookups in the same pass and the whole pass commits atomically.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a write transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Safe to call after Commit.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// FilePosts returns every file-sourced post keyed by file path.
func (t *Tx) FilePosts(ctx context.Context) (map[string]*models.Post, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, slug, file_path, updated_at FROM posts WHERE is_from_file = 1`)
	if err != nil {
		return nil, fmt.Errorf("store: file posts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*models.Post)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Slug, &p.FilePath, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan file post: %w", err)
		}
		p.FromFile = true
		out[p.FilePath] = &p
	}
	return out, rows.Err()
}

// SlugExists reports whether any post, file- or editor-sourced, already
// owns the slug.
func (t *Tx) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		`SELECT count(*) FROM posts WHERE slug = ?`, slug).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: slug exists: %w", err)
	}
	return n > 0, nil
}

// CategoryByName looks a category up by exact name. Returns nil when the
// category does not exist.
func (t *Tx) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, name, slug FROM categories WHERE name = ?`, name).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: category by name: %w", err)
	}
	return &c, nil
}

// CreateCategory inserts a category and fills in its ID. The insert is
// immediately visible to CategoryByName within the same transaction.
func (t *Tx) CreateCategory(ctx context.Context, c *models.Category) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO categories (name, slug) VALUES (?, ?)`, c.Name, c.Slug)
	if err != nil {
		return fmt.Errorf("store: create category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: category id: %w", err)
	}
	return nil
}

// CreateFilePost inserts a published, file-sourced post and fills in its ID.
func (t *Tx) CreateFilePost(ctx context.Context, p *models.Post) error {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO posts (title, slug, content, summary, cover_image,
			is_published, is_from_file, file_path, tags, author_id,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, 1, ?, ?, ?, ?, ?)`,
		p.Title, p.Slug, p.Content, p.Summary, p.CoverImage,
		p.FilePath, tagsToJSON(p.Tags), p.AuthorID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: create file post: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: post id: %w", err)
	}
	return nil
}

// UpdateFilePost overwrites the content fields of an existing file-sourced
// post after its source file changed on disk.
func (t *Tx) UpdateFilePost(ctx context.Context, id int64, title, content, summary, cover string, tags []string, updatedAt time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, content = ?, summary = ?, cover_image = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		title, content, summary, cover, tagsToJSON(tags), updatedAt, id)
	if err != nil {
		return fmt.Errorf("store: update file post: %w", err)
	}
	return nil
}

// DeletePost removes a post; category links cascade.
func (t *Tx) DeletePost(ctx context.Context, id int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete post: %w", err)
	}
	return nil
}

// LinkCategory associates a post with a category.
func (t *Tx) LinkCategory(ctx context.Context, postID, categoryID int64) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO post_categories (post_id, category_id) VALUES (?, ?)`,
		postID, categoryID)
	if err != nil {
		return fmt.Errorf("store: link category: %w", err)
	}
	return nil
}

// FirstAdmin returns the ID of the oldest administrator account, or nil
// when no admin exists yet.
func (t *Tx) FirstAdmin(ctx context.Context) (*int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE is_admin = 1 ORDER BY id LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: first admin: %w", err)
	}
	return &id, nil
}
