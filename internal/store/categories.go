package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mengfw/inkwell/internal/apperr"
	"github.com/mengfw/inkwell/internal/models"
)

// ListCategories returns all categories ordered for display.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, slug, description, color, icon, sort_order
		FROM categories
		ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	defer rows.Close()

	out := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color, &c.Icon, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryBySlug returns a single category.
func (s *Store) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, name, slug, description, color, icon, sort_order
		FROM categories WHERE slug = ?`, slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color, &c.Icon, &c.SortOrder)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: category by slug: %w", err)
	}
	return &c, nil
}

// CreateCategory inserts a category and fills in its ID.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO categories (name, slug, description, color, icon, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Slug, c.Description, c.Color, c.Icon, c.SortOrder)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: create category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: category id: %w", err)
	}
	return nil
}

// UpdateCategory overwrites a category's editable fields.
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, slug = ?, description = ?, color = ?, icon = ?, sort_order = ?
		WHERE id = ?`,
		c.Name, c.Slug, c.Description, c.Color, c.Icon, c.SortOrder, c.ID)
	if err != nil {
		return fmt.Errorf("store: update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category; post links cascade.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
