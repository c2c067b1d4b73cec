// Package syncer reconciles the Markdown posts folder with the database:
// new files become posts, changed files update them, and deleted files
// remove them.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mengfw/inkwell/internal/markdown"
	"github.com/mengfw/inkwell/internal/models"
	"github.com/mengfw/inkwell/internal/scanner"
	"github.com/mengfw/inkwell/internal/store"
)

// Result counts the writes one reconciliation pass performed.
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

func (r Result) changed() bool {
	return r.Created+r.Updated+r.Deleted > 0
}

// Reconcile diffs the observed posts against the file-sourced records in
// the database and applies creates, updates, and deletes through tx. The
// caller owns the transaction: commit on a changed Result, roll back
// otherwise.
//
// authorID attributes newly created posts; nil falls back to the first
// administrator account, or no author when none exists.
func Reconcile(ctx context.Context, tx *store.Tx, observed []models.ObservedPost, authorID *int64) (Result, error) {
	var res Result

	existing, err := tx.FilePosts(ctx)
	if err != nil {
		return res, err
	}

	if authorID == nil {
		authorID, err = tx.FirstAdmin(ctx)
		if err != nil {
			return res, err
		}
	}

	// Categories created earlier in this pass must be reused by later
	// posts, so lookups hit this cache before the database.
	catCache := make(map[string]*models.Category)

	seen := make(map[string]struct{}, len(observed))
	for _, obs := range observed {
		seen[obs.FilePath] = struct{}{}

		if post, ok := existing[obs.FilePath]; ok {
			// Strictly newer mtimes only: re-scanning unchanged files
			// must be a no-op.
			if !obs.UpdatedAt.After(post.UpdatedAt) {
				continue
			}
			if err := tx.UpdateFilePost(ctx, post.ID, obs.Title, obs.Content,
				obs.Summary, obs.CoverImage, obs.Tags, obs.UpdatedAt); err != nil {
				return res, err
			}
			res.Updated++
			continue
		}

		if err := createPost(ctx, tx, obs, authorID, catCache); err != nil {
			return res, err
		}
		res.Created++
	}

	for path, post := range existing {
		if _, ok := seen[path]; ok {
			continue
		}
		if err := tx.DeletePost(ctx, post.ID); err != nil {
			return res, err
		}
		res.Deleted++
	}

	return res, nil
}

func createPost(ctx context.Context, tx *store.Tx, obs models.ObservedPost, authorID *int64, catCache map[string]*models.Category) error {
	slug := obs.Slug
	taken, err := tx.SlugExists(ctx, slug)
	if err != nil {
		return err
	}
	if taken {
		slug = fmt.Sprintf("%s-%d", slug, time.Now().Unix())
	}

	post := &models.Post{
		Title:      obs.Title,
		Slug:       slug,
		Content:    obs.Content,
		Summary:    obs.Summary,
		CoverImage: obs.CoverImage,
		Tags:       obs.Tags,
		FilePath:   obs.FilePath,
		AuthorID:   authorID,
		CreatedAt:  obs.CreatedAt,
		UpdatedAt:  obs.UpdatedAt,
	}
	if err := tx.CreateFilePost(ctx, post); err != nil {
		return err
	}

	if obs.Category == "" || obs.Category == models.UncategorizedName {
		return nil
	}
	cat, err := resolveCategory(ctx, tx, obs.Category, catCache)
	if err != nil {
		return err
	}
	return tx.LinkCategory(ctx, post.ID, cat.ID)
}

// resolveCategory finds or creates the named category, consulting the
// per-pass cache first so two files in the same new folder share one row.
func resolveCategory(ctx context.Context, tx *store.Tx, name string, cache map[string]*models.Category) (*models.Category, error) {
	if c, ok := cache[name]; ok {
		return c, nil
	}
	c, err := tx.CategoryByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &models.Category{Name: name, Slug: markdown.Slug(name)}
		if err := tx.CreateCategory(ctx, c); err != nil {
			return nil, err
		}
	}
	cache[name] = c
	return c, nil
}

// Syncer runs scan-and-reconcile passes against one posts folder. A mutex
// serializes passes so overlapping triggers cannot double-create posts.
type Syncer struct {
	store    *store.Store
	root     string
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	lastRun time.Time
}

// New creates a Syncer. interval throttles MaybeSync; Sync ignores it.
func New(st *store.Store, root string, interval time.Duration, logger *slog.Logger) *Syncer {
	return &Syncer{store: st, root: root, interval: interval, logger: logger}
}

// Sync performs one full scan-and-reconcile pass. A pass that finds no
// differences performs no database write.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	return s.SyncAs(ctx, nil)
}

// SyncAs is Sync with an explicit author for any posts created this pass.
func (s *Syncer) SyncAs(ctx context.Context, authorID *int64) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = time.Now()
	return s.run(ctx, authorID)
}

// MaybeSync runs a pass only when the throttle interval has elapsed.
// Failures are logged, never surfaced: a broken background sync must not
// take an unrelated request down with it.
func (s *Syncer) MaybeSync(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if time.Since(s.lastRun) < s.interval {
		return
	}
	s.lastRun = time.Now()

	res, err := s.run(ctx, nil)
	if err != nil {
		s.logger.Warn("background sync failed", slog.String("error", err.Error()))
		return
	}
	if res.changed() {
		s.logger.Info("background sync applied changes",
			slog.Int("created", res.Created),
			slog.Int("updated", res.Updated),
			slog.Int("deleted", res.Deleted))
	}
}

func (s *Syncer) run(ctx context.Context, authorID *int64) (Result, error) {
	observed, err := scanner.Scan(s.root)
	if err != nil {
		return Result{}, fmt.Errorf("syncer: scan: %w", err)
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := Reconcile(ctx, tx, observed, authorID)
	if err != nil {
		return Result{}, fmt.Errorf("syncer: reconcile: %w", err)
	}
	if !res.changed() {
		return res, nil
	}
	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	return res, nil
}
