package reader

import (
	"strings"
	"testing"
)

func TestPaginate_EmptyTextYieldsSingleFallbackPage(t *testing.T) {
	pages := Paginate("", nil, DefaultPaginateOpts())
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Text != "" || pages[0].Audio != nil {
		t.Fatalf("expected empty page with nil audio, got %+v", pages[0])
	}
}

func TestPaginate_NoTerminatorFallsBackToWholeText(t *testing.T) {
	text := "no sentence boundaries here at all"
	pages := Paginate(text, nil, DefaultPaginateOpts())
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Text != text {
		t.Fatalf("expected whole text, got %q", pages[0].Text)
	}
	if pages[0].Audio != nil {
		t.Fatalf("expected nil audio window")
	}
}

func TestPaginate_OneSentencePerPage(t *testing.T) {
	pages := Paginate("One. Two. Three.", nil, PaginateOpts{SentencesPerPage: 1, Separator: "\n\n"})
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	want := []string{"One.", "Two.", "Three."}
	for i, w := range want {
		if pages[i].Text != w {
			t.Fatalf("page %d: expected %q got %q", i, w, pages[i].Text)
		}
		if pages[i].Audio != nil {
			t.Fatalf("page %d: expected nil audio without alignment", i)
		}
	}
}

func TestPaginate_GroupsSentences(t *testing.T) {
	pages := Paginate("A. B. C. D. E.", nil, PaginateOpts{SentencesPerPage: 3, Separator: "\n\n"})
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].Text != "A.\n\nB.\n\nC." {
		t.Fatalf("unexpected first page: %q", pages[0].Text)
	}
	if pages[1].Text != "D.\n\nE." {
		t.Fatalf("unexpected second page: %q", pages[1].Text)
	}
}

func TestPaginate_SynthesizesTrailingTerminator(t *testing.T) {
	pages := Paginate("First sentence. trailing fragment", nil, PaginateOpts{SentencesPerPage: 1})
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[1].Text != "trailing fragment." {
		t.Fatalf("expected synthesized terminator, got %q", pages[1].Text)
	}
}

func TestPaginate_ReconstructsAllSentenceContent(t *testing.T) {
	text := "The quick brown fox jumps. Over the lazy dog! Was it worth it? Probably."
	pages := Paginate(text, nil, PaginateOpts{SentencesPerPage: 2, Separator: " "})
	var joined []string
	for _, p := range pages {
		joined = append(joined, p.Text)
	}
	got := strings.Join(strings.Fields(strings.Join(joined, " ")), " ")
	want := strings.Join(strings.Fields(text), " ")
	if got != want {
		t.Fatalf("content not reconstructed:\n got %q\nwant %q", got, want)
	}
}

func TestMatchAlignment_NilWithoutSpans(t *testing.T) {
	if w := MatchAlignment("anything", nil); w != nil {
		t.Fatalf("expected nil for nil alignment, got %+v", w)
	}
	if w := MatchAlignment("anything", &AlignmentData{}); w != nil {
		t.Fatalf("expected nil for empty spans, got %+v", w)
	}
}

func TestMatchAlignment_MatchesBoundarySpans(t *testing.T) {
	alignment := &AlignmentData{
		Spans: []AlignmentSpan{
			{Start: 0, End: 2.5, Text: "the story begins on a cold morning"},
			{Start: 2.5, End: 5, Text: "in a small village by the sea"},
			{Start: 5, End: 8, Text: "where nothing ever seemed to change"},
		},
	}
	page := "The story begins on a cold morning in a small village, where nothing ever seemed to change."
	w := MatchAlignment(page, alignment)
	if w == nil {
		t.Fatalf("expected a window")
	}
	if w.Start != 0 || w.End != 8 {
		t.Fatalf("expected window [0, 8], got [%v, %v]", w.Start, w.End)
	}
}

func TestMatchAlignment_FallsBackToFullSpan(t *testing.T) {
	alignment := &AlignmentData{
		Spans: []AlignmentSpan{
			{Start: 1.5, End: 4, Text: "completely unrelated transcript"},
			{Start: 4, End: 9.25, Text: "still nothing matching"},
		},
	}
	w := MatchAlignment("words that appear nowhere in the spans at all honestly", alignment)
	if w == nil {
		t.Fatalf("expected full-span fallback, got nil")
	}
	if w.Start != 1.5 || w.End != 9.25 {
		t.Fatalf("expected window [1.5, 9.25], got [%v, %v]", w.Start, w.End)
	}
}

func TestMatchAlignment_StartAndEndInSameSpan(t *testing.T) {
	alignment := &AlignmentData{
		Spans: []AlignmentSpan{
			{Start: 0, End: 3, Text: "an opening that does not match"},
			{Start: 3, End: 7, Text: "short page lives entirely here"},
		},
	}
	w := MatchAlignment("short page lives entirely here", alignment)
	if w == nil {
		t.Fatalf("expected a window")
	}
	if w.Start != 3 || w.End != 7 {
		t.Fatalf("expected window [3, 7], got [%v, %v]", w.Start, w.End)
	}
}
