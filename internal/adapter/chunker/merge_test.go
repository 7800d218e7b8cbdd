package chunker

import (
	"strings"
	"testing"

	"docrag/internal/domain"
)

func tableChunk(id, body string) domain.Chunk {
	return domain.Chunk{
		ID:       id,
		Text:     testHeader + "\n\n" + body,
		Metadata: domain.ChunkMetadata{IsTable: true},
	}
}

func TestMergeSmallFoldsIntoPrevious(t *testing.T) {
	chunks := []domain.Chunk{
		textChunk("c1", "a full-size paragraph that stands on its own feet"),
		textChunk("c2", "stub"),
		textChunk("c3", "another full-size paragraph following the stub text"),
	}

	out := MergeSmall(chunks, 20)
	if len(out) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(out))
	}
	if out[0].ID != "c1" {
		t.Errorf("surviving chunk keeps its id, got %q", out[0].ID)
	}
	if !strings.HasSuffix(out[0].Text, "\n\nstub") {
		t.Errorf("stub body should be appended, got %q", out[0].Text)
	}
	if out[1].ID != "c3" {
		t.Errorf("full-size chunk kept separate, got %q", out[1].ID)
	}
}

func TestMergeSmallNeverTouchesTables(t *testing.T) {
	chunks := []domain.Chunk{
		textChunk("c1", "leading paragraph with enough characters to survive"),
		tableChunk("c2", "| a |"),
		textChunk("c3", "stub"),
	}

	out := MergeSmall(chunks, 20)
	// The small table is not folded forward, and the stub after it is not
	// folded into the table.
	if len(out) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(out))
	}
	for i, id := range []string{"c1", "c2", "c3"} {
		if out[i].ID != id {
			t.Errorf("chunk %d id = %q, want %q", i, out[i].ID, id)
		}
	}
}

func TestMergeSmallDisabled(t *testing.T) {
	chunks := []domain.Chunk{textChunk("c1", "x"), textChunk("c2", "y")}

	if out := MergeSmall(chunks, 0); len(out) != 2 {
		t.Errorf("minChars 0 should disable merging, got %d chunks", len(out))
	}
	if out := MergeSmall(chunks, -5); len(out) != 2 {
		t.Errorf("negative minChars should disable merging, got %d chunks", len(out))
	}
}

func TestMergeSmallChainOfStubs(t *testing.T) {
	chunks := []domain.Chunk{
		textChunk("c1", "anchor paragraph long enough to not be a stub itself"),
		textChunk("c2", "one"),
		textChunk("c3", "two"),
		textChunk("c4", "three"),
	}

	out := MergeSmall(chunks, 20)
	if len(out) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(out))
	}
	for _, frag := range []string{"\n\none", "\n\ntwo", "\n\nthree"} {
		if !strings.Contains(out[0].Text, frag) {
			t.Errorf("merged text missing %q: %q", frag, out[0].Text)
		}
	}
}

func TestMergeSmallLeadingStubKept(t *testing.T) {
	chunks := []domain.Chunk{
		textChunk("c1", "tiny"),
		textChunk("c2", "a full paragraph that follows the undersized opener"),
	}

	out := MergeSmall(chunks, 20)
	// Nothing precedes the first chunk, so it survives as-is.
	if len(out) != 2 || out[0].ID != "c1" {
		t.Fatalf("leading stub should be kept, got %+v", out)
	}
}
