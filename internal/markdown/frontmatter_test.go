package markdown

import "testing"

func TestParseFrontMatter_Basic(t *testing.T) {
	doc := "---\ntitle: Hello\ndate: 2026-01-02\ntags: go, web\n---\n# Body\ntext\n"
	meta, body := ParseFrontMatter(doc)
	if meta["title"] != "Hello" {
		t.Errorf("title = %q, want %q", meta["title"], "Hello")
	}
	if meta["date"] != "2026-01-02" {
		t.Errorf("date = %q", meta["date"])
	}
	if body != "# Body\ntext" {
		t.Errorf("body = %q", body)
	}
}

func TestParseFrontMatter_ValueWithColon(t *testing.T) {
	doc := "---\ntitle: Flask Guide: A to Z\n---\nbody"
	meta, _ := ParseFrontMatter(doc)
	if meta["title"] != "Flask Guide: A to Z" {
		t.Errorf("title = %q, want value with colon intact", meta["title"])
	}
}

func TestParseFrontMatter_KeysLowercasedAndTrimmed(t *testing.T) {
	doc := "---\n  Title :  Spaced  \n---\nbody"
	meta, _ := ParseFrontMatter(doc)
	if meta["title"] != "Spaced" {
		t.Errorf("meta = %v", meta)
	}
}

func TestParseFrontMatter_NoFrontMatter(t *testing.T) {
	doc := "# Just a heading\ntext\n"
	meta, body := ParseFrontMatter(doc)
	if len(meta) != 0 {
		t.Errorf("expected empty metadata, got %v", meta)
	}
	if body != doc {
		t.Errorf("body changed: %q", body)
	}
}

func TestParseFrontMatter_Unterminated(t *testing.T) {
	doc := "---\ntitle: Broken\nno closing delimiter"
	meta, body := ParseFrontMatter(doc)
	if len(meta) != 0 {
		t.Errorf("expected empty metadata, got %v", meta)
	}
	if body != doc {
		t.Errorf("body changed: %q", body)
	}
}

func TestParseFrontMatter_EmptyBlock(t *testing.T) {
	meta, body := ParseFrontMatter("---\n---\nbody text")
	if len(meta) != 0 {
		t.Errorf("expected empty metadata, got %v", meta)
	}
	if body != "body text" {
		t.Errorf("body = %q", body)
	}
}

func TestParseFrontMatter_LinesWithoutColonIgnored(t *testing.T) {
	doc := "---\njust a line\ntitle: Ok\n---\nbody"
	meta, _ := ParseFrontMatter(doc)
	if len(meta) != 1 || meta["title"] != "Ok" {
		t.Errorf("meta = %v", meta)
	}
}
