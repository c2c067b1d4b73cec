// Package scanner walks the posts folder and turns Markdown files into
// observed post records ready for reconciliation.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mengfw/inkwell/internal/markdown"
	"github.com/mengfw/inkwell/internal/models"
)

const dateLayout = "2006-01-02"

var titleCaser = cases.Title(language.Und)

// Scan walks root recursively and returns one ObservedPost per Markdown
// file, newest first by created time. A missing root is created empty and
// yields no posts; unreadable files are skipped so a single bad file
// cannot abort the pass.
func Scan(root string) ([]models.ObservedPost, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scanner: resolve root: %w", err)
	}
	if _, err := os.Stat(absRoot); os.IsNotExist(err) {
		if err := os.MkdirAll(absRoot, 0o755); err != nil {
			return nil, fmt.Errorf("scanner: create root: %w", err)
		}
		return nil, nil
	}

	var posts []models.ObservedPost
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if !isMarkdown(d.Name()) {
			return nil
		}
		post, ok := observeFile(absRoot, p)
		if ok {
			posts = append(posts, post)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanner: walk: %w", err)
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// Categories returns the sorted names of top-level non-hidden
// subdirectories of root, the folder-derived category list.
func Categories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanner: read root: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// observeFile reads and derives a single post. ok is false when the file
// could not be read.
func observeFile(root, path string) (models.ObservedPost, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.ObservedPost{}, false
	}
	info, err := os.Stat(path)
	if err != nil {
		return models.ObservedPost{}, false
	}

	meta, body := markdown.ParseFrontMatter(string(raw))

	title := meta["title"]
	if title == "" {
		title = titleFromFilename(filepath.Base(path))
	}
	slug := meta["slug"]
	if slug == "" {
		slug = markdown.Slug(title)
	}
	summary := meta["summary"]
	if summary == "" {
		summary = markdown.Summary(body, markdown.DefaultSummaryLength)
	}

	// The file's timestamps are the fallback for everything date-shaped;
	// front matter can move created_at but never updated_at.
	createdAt := info.ModTime()
	if t, err := time.ParseInLocation(dateLayout, meta["date"], time.Local); err == nil {
		createdAt = t
	}

	category := meta["category"]
	if category == "" {
		category = dirCategory(root, path)
	}

	return models.ObservedPost{
		Title:      title,
		Slug:       slug,
		Content:    body,
		RawContent: string(raw),
		Summary:    summary,
		CoverImage: meta["cover"],
		Category:   category,
		Tags:       splitTags(meta["tags"]),
		FilePath:   path,
		CreatedAt:  createdAt,
		UpdatedAt:  info.ModTime(),
	}, true
}

// dirCategory maps a file's containing directory to a category name: the
// slash-joined path relative to root, or the uncategorized sentinel for
// files sitting at the root itself.
func dirCategory(root, path string) string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return models.UncategorizedName
	}
	return filepath.ToSlash(rel)
}

func titleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return titleCaser.String(base)
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func isMarkdown(name string) bool {
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown")
}
