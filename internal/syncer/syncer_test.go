package syncer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mengfw/inkwell/internal/models"
	"github.com/mengfw/inkwell/internal/store"
	"github.com/mengfw/inkwell/internal/testutil"
)

func testSyncer(t *testing.T) (*Syncer, *store.Store, string) {
	t.Helper()
	st := testutil.TestStore(t)
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(st, root, 5*time.Second, logger), st, root
}

func writePost(t *testing.T, root, name, content string) string {
	t.Helper()
	return testutil.WriteMarkdown(t, root, name, content)
}

func TestSync_CreatesPostsFromFiles(t *testing.T) {
	s, st, root := testSyncer(t)
	ctx := context.Background()

	writePost(t, root, filepath.Join("tech", "first.md"), "---\ntitle: First\n---\nbody one")
	writePost(t, root, filepath.Join("tech", "second.md"), "---\ntitle: Second\n---\nbody two")

	res, err := s.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Created != 2 || res.Updated != 0 || res.Deleted != 0 {
		t.Errorf("result = %+v", res)
	}

	posts, total, err := st.ListPosts(ctx, store.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("total = %d", total)
	}
	for _, p := range posts {
		if !p.FromFile || !p.Published {
			t.Errorf("post %q: from_file=%v published=%v", p.Slug, p.FromFile, p.Published)
		}
		if len(p.Categories) != 1 || p.Categories[0].Name != "tech" {
			t.Errorf("post %q categories = %v", p.Slug, p.Categories)
		}
	}

	// Two files in the same new folder share one category row.
	cats, err := st.ListCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 {
		t.Errorf("categories = %v", cats)
	}
}

func TestSync_Idempotent(t *testing.T) {
	s, _, root := testSyncer(t)
	ctx := context.Background()

	writePost(t, root, "a.md", "---\ntitle: A\n---\nbody")
	writePost(t, root, "b.md", "---\ntitle: B\n---\nbody")

	if _, err := s.Sync(ctx); err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	res, err := s.Sync(ctx)
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if res.Created != 0 || res.Updated != 0 || res.Deleted != 0 {
		t.Errorf("second pass wrote: %+v", res)
	}
}

func TestSync_UpdateGating(t *testing.T) {
	s, st, root := testSyncer(t)
	ctx := context.Background()

	p := writePost(t, root, "post.md", "---\ntitle: Old Title\n---\nold body")
	if _, err := s.Sync(ctx); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	mtime := info.ModTime()

	// Same mtime: treated as unchanged even though bytes differ.
	writePost(t, root, "post.md", "---\ntitle: New Title\n---\nnew body")
	if err := os.Chtimes(p, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	res, err := s.Sync(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated != 0 {
		t.Errorf("equal mtime updated: %+v", res)
	}

	// Strictly newer mtime: content flows through.
	newer := mtime.Add(time.Hour)
	if err := os.Chtimes(p, newer, newer); err != nil {
		t.Fatal(err)
	}
	res, err = s.Sync(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated != 1 {
		t.Fatalf("newer mtime not updated: %+v", res)
	}

	posts, _, err := st.ListPosts(ctx, store.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if posts[0].Title != "New Title" || posts[0].Content != "new body" {
		t.Errorf("post = %+v", posts[0])
	}
}

func TestSync_DeletionDetection(t *testing.T) {
	s, st, root := testSyncer(t)
	ctx := context.Background()

	p := writePost(t, root, "gone.md", "---\ntitle: Gone\n---\nbody")
	writePost(t, root, "kept.md", "---\ntitle: Kept\n---\nbody")
	if _, err := s.Sync(ctx); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(p); err != nil {
		t.Fatal(err)
	}
	res, err := s.Sync(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Deleted != 1 {
		t.Errorf("result = %+v", res)
	}

	_, total, err := st.ListPosts(ctx, store.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	if _, err := st.PostBySlug(ctx, "gone"); err == nil {
		t.Error("deleted file still has a post")
	}
}

func TestSync_SlugCollisionSuffixed(t *testing.T) {
	s, st, root := testSyncer(t)
	ctx := context.Background()

	existing := &models.Post{Title: "Hello", Slug: "hello", Published: true}
	if err := st.CreatePost(ctx, existing); err != nil {
		t.Fatal(err)
	}

	writePost(t, root, "hello.md", "---\ntitle: Hello\n---\nfile body")
	if _, err := s.Sync(ctx); err != nil {
		t.Fatal(err)
	}

	posts, _, err := st.ListPosts(ctx, store.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var fileSlug string
	for _, p := range posts {
		if p.FromFile {
			fileSlug = p.Slug
		}
	}
	if fileSlug == "" || fileSlug == "hello" || !strings.HasPrefix(fileSlug, "hello-") {
		t.Errorf("file post slug = %q", fileSlug)
	}
}

func TestSync_AuthorFallsBackToFirstAdmin(t *testing.T) {
	s, st, root := testSyncer(t)
	ctx := context.Background()

	admin := &models.User{Username: "root", Email: "r@example.com", PasswordHash: "x", IsAdmin: true, Theme: "light"}
	if err := st.CreateUser(ctx, admin); err != nil {
		t.Fatal(err)
	}

	writePost(t, root, "owned.md", "---\ntitle: Owned\n---\nbody")
	if _, err := s.Sync(ctx); err != nil {
		t.Fatal(err)
	}

	got, err := st.PostBySlug(ctx, "owned")
	if err != nil {
		t.Fatal(err)
	}
	if got.AuthorID == nil || *got.AuthorID != admin.ID {
		t.Errorf("author = %v, want admin %d", got.AuthorID, admin.ID)
	}
}

func TestSync_NoAdminLeavesUnattributed(t *testing.T) {
	s, st, root := testSyncer(t)
	ctx := context.Background()

	writePost(t, root, "orphan.md", "---\ntitle: Orphan\n---\nbody")
	if _, err := s.Sync(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := st.PostBySlug(ctx, "orphan")
	if err != nil {
		t.Fatal(err)
	}
	if got.AuthorID != nil {
		t.Errorf("author = %v, want nil", *got.AuthorID)
	}
}

func TestSync_ExistingCategoryReused(t *testing.T) {
	s, st, root := testSyncer(t)
	ctx := context.Background()

	if err := st.CreateCategory(ctx, &models.Category{Name: "tech", Slug: "tech"}); err != nil {
		t.Fatal(err)
	}
	writePost(t, root, filepath.Join("tech", "a.md"), "---\ntitle: A\n---\nbody")
	if _, err := s.Sync(ctx); err != nil {
		t.Fatal(err)
	}

	cats, err := st.ListCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 {
		t.Errorf("categories duplicated: %v", cats)
	}
}

func TestSync_RootFilesStayUncategorized(t *testing.T) {
	s, st, root := testSyncer(t)
	ctx := context.Background()

	writePost(t, root, "loose.md", "---\ntitle: Loose\n---\nbody")
	if _, err := s.Sync(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := st.PostBySlug(ctx, "loose")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Categories) != 0 {
		t.Errorf("categories = %v", got.Categories)
	}
	cats, err := st.ListCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 0 {
		t.Errorf("sentinel category was created: %v", cats)
	}
}

func TestMaybeSync_Throttled(t *testing.T) {
	s, st, root := testSyncer(t)
	ctx := context.Background()

	writePost(t, root, "a.md", "---\ntitle: A\n---\nbody")
	s.MaybeSync(ctx)

	// Within the interval a new file is not picked up.
	writePost(t, root, "b.md", "---\ntitle: B\n---\nbody")
	s.MaybeSync(ctx)

	_, total, err := st.ListPosts(ctx, store.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1 (throttled)", total)
	}
}
