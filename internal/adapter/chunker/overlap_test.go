package chunker

import (
	"strings"
	"testing"

	"docrag/internal/domain"
)

const testHeader = "[Page 1 | Section: Document]"

func textChunk(id, body string) domain.Chunk {
	return domain.Chunk{ID: id, Text: testHeader + "\n\n" + body}
}

func TestApplyOverlapNoOp(t *testing.T) {
	chunks := []domain.Chunk{textChunk("a", "one"), textChunk("b", "two")}

	if got := ApplyOverlap(chunks, 0); &got[0] != &chunks[0] {
		t.Error("zero ratio should return input unchanged")
	}
	if got := ApplyOverlap(chunks, -1); &got[0] != &chunks[0] {
		t.Error("negative ratio should return input unchanged")
	}
	single := chunks[:1]
	if got := ApplyOverlap(single, 0.5); len(got) != 1 || got[0].Text != single[0].Text {
		t.Error("single chunk should pass through unchanged")
	}
}

func TestApplyOverlapSnippetFloor(t *testing.T) {
	body := strings.Repeat("a", 100)
	chunks := []domain.Chunk{textChunk("c1", body), textChunk("c2", "second body here")}

	out := ApplyOverlap(chunks, 0.12)
	// floor(100*0.12)=12 is below the 50-char floor, so the snippet is the
	// trailing 50 chars of the previous body.
	want := "... " + strings.Repeat("a", 50) + "\n\n" + chunks[1].Text
	if out[1].Text != want {
		t.Errorf("stitched text = %q, want %q", out[1].Text, want)
	}
	if out[0].Text != chunks[0].Text {
		t.Error("first chunk must never be modified")
	}
}

func TestApplyOverlapRatioAboveFloor(t *testing.T) {
	body := strings.Repeat("b", 1000)
	chunks := []domain.Chunk{textChunk("c1", body), textChunk("c2", "tail chunk")}

	out := ApplyOverlap(chunks, 0.2)
	prefix, _, ok := strings.Cut(out[1].Text, "\n\n")
	if !ok {
		t.Fatalf("stitched text missing separator: %q", out[1].Text)
	}
	// floor(1000*0.2)=200 chars of overlap plus the "... " marker.
	if len(prefix) != 204 {
		t.Errorf("prefix length = %d, want 204", len(prefix))
	}
}

func TestApplyOverlapShortBodyUnchanged(t *testing.T) {
	chunks := []domain.Chunk{textChunk("c1", "tiny"), textChunk("c2", "next")}

	out := ApplyOverlap(chunks, 0.12)
	// Snippet length 50 exceeds the 4-char body, so no prefix is added.
	if out[1].Text != chunks[1].Text {
		t.Errorf("short previous body should leave chunk unchanged, got %q", out[1].Text)
	}
}

func TestApplyOverlapCompoundsAgainstStitchedOutput(t *testing.T) {
	a60 := strings.Repeat("a", 60)
	b60 := strings.Repeat("b", 60)
	chunks := []domain.Chunk{
		textChunk("c1", a60),
		textChunk("c2", b60),
		textChunk("c3", "closing chunk body"),
	}

	out := ApplyOverlap(chunks, 0.5)

	// c2: prev body is a60, snippet max(50, 30)=50.
	wantC2 := "... " + strings.Repeat("a", 50) + "\n\n" + chunks[1].Text
	if out[1].Text != wantC2 {
		t.Fatalf("second chunk = %q, want %q", out[1].Text, wantC2)
	}

	// c3 stitches against the already-modified c2: its body starts after the
	// first blank line, which is the end of the "... " prefix, so the body is
	// c2's original text (header included, 90 chars). Snippet max(50, 45)=50,
	// the trailing 50 chars of which are all b's.
	wantC3 := "... " + strings.Repeat("b", 50) + "\n\n" + chunks[2].Text
	if out[2].Text != wantC3 {
		t.Errorf("third chunk = %q, want %q", out[2].Text, wantC3)
	}
}

func TestApplyOverlapTrimsSnippetWhitespace(t *testing.T) {
	body := strings.Repeat("x", 60) + "   "
	chunks := []domain.Chunk{textChunk("c1", body), textChunk("c2", "after")}

	out := ApplyOverlap(chunks, 0.12)
	if strings.Contains(out[1].Text, "   \n\n") {
		t.Errorf("snippet should be trimmed, got %q", out[1].Text)
	}
	if !strings.HasPrefix(out[1].Text, "... x") {
		t.Errorf("expected trimmed snippet prefix, got %q", out[1].Text)
	}
}
