package reader

import (
	"strings"
	"unicode"
)

// AlignmentSpan is one time-stamped transcript span of a segment's audio.
type AlignmentSpan struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// AlignmentData is produced upstream by the audio pipeline. Spans are
// ordered by start time. Absent or empty alignment is a normal state.
type AlignmentData struct {
	Language string          `json:"language"`
	Spans    []AlignmentSpan `json:"segments"`
}

// AudioWindow is the playback range of a sub-page, in seconds.
type AudioWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// SubPage is a contiguous slice of a segment's text, optionally aligned to
// an audio window. Sub-pages are derived, never persisted: they are
// recomputed from (text, alignment) whenever the segment identity changes.
type SubPage struct {
	Text  string       `json:"text"`
	Audio *AudioWindow `json:"audio,omitempty"`
}

type PaginateOpts struct {
	// SentencesPerPage is how many sentences are grouped into one sub-page.
	SentencesPerPage int
	// Separator joins grouped sentences in the rendered page text.
	Separator string
}

func DefaultPaginateOpts() PaginateOpts {
	return PaginateOpts{
		SentencesPerPage: 3,
		Separator:        "\n\n",
	}
}

const boundaryWords = 5

// Paginate splits a segment's raw text into ordered sub-pages. It is pure,
// deterministic and total: any input, including empty or unsegmentable
// text, yields at least one sub-page (the whole text with no audio window).
func Paginate(text string, alignment *AlignmentData, opts PaginateOpts) []SubPage {
	if opts.SentencesPerPage <= 0 {
		opts.SentencesPerPage = DefaultPaginateOpts().SentencesPerPage
	}
	if opts.Separator == "" {
		opts.Separator = DefaultPaginateOpts().Separator
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return []SubPage{{Text: text}}
	}

	pages := make([]SubPage, 0, (len(sentences)+opts.SentencesPerPage-1)/opts.SentencesPerPage)
	for i := 0; i < len(sentences); i += opts.SentencesPerPage {
		end := i + opts.SentencesPerPage
		if end > len(sentences) {
			end = len(sentences)
		}
		pageText := strings.Join(sentences[i:end], opts.Separator)
		pages = append(pages, SubPage{
			Text:  pageText,
			Audio: MatchAlignment(pageText, alignment),
		})
	}
	if len(pages) == 0 {
		return []SubPage{{Text: text}}
	}
	return pages
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitSentences cuts text at sentence-terminator punctuation followed by
// whitespace, keeping the terminator attached to its sentence. A trailing
// fragment without a terminator gets a synthesized period. Text containing
// no terminator at all is reported as unsegmentable (nil), which callers
// turn into a single whole-text page.
func splitSentences(text string) []string {
	if !strings.ContainsAny(text, ".!?") {
		return nil
	}

	var sentences []string
	runes := []rune(text)
	var b strings.Builder
	flush := func() {
		s := strings.TrimSpace(b.String())
		b.Reset()
		if s == "" {
			return
		}
		if !isTerminator(rune(s[len(s)-1])) {
			s += "."
		}
		sentences = append(sentences, s)
	}
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if isTerminator(runes[i]) && (i+1 >= len(runes) || unicode.IsSpace(runes[i+1])) {
			flush()
		}
	}
	flush()
	return sentences
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// MatchAlignment estimates the audio window of a page by locating its first
// and last few words inside the alignment spans. It scans spans in order:
// the first span containing the leading words sets the start, and the scan
// then continues until a span contains the trailing words, which sets the
// end. A boundary that never matches falls back to the full audio extent
// (first span's start, last span's end). The only nil result is an
// alignment with zero spans.
//
// This is a best-effort heuristic: repeated phrasing can match the wrong
// span, and an unmatched page on a long segment gets a window covering the
// whole audio. That imprecision is an accepted property of the alignment
// data, not something this function tries to correct.
func MatchAlignment(pageText string, alignment *AlignmentData) *AudioWindow {
	if alignment == nil || len(alignment.Spans) == 0 {
		return nil
	}

	words := strings.Fields(normalizeText(pageText))
	firstWords := strings.Join(words[:minInt(boundaryWords, len(words))], " ")
	lastWords := ""
	if len(words) > 0 {
		lastWords = strings.Join(words[maxInt(0, len(words)-boundaryWords):], " ")
	}

	var start, end *float64
	for i := range alignment.Spans {
		span := &alignment.Spans[i]
		spanText := normalizeText(span.Text)
		if start == nil && firstWords != "" && strings.Contains(spanText, firstWords) {
			v := span.Start
			start = &v
		}
		if start != nil && end == nil && lastWords != "" && strings.Contains(spanText, lastWords) {
			v := span.End
			end = &v
		}
		if start != nil && end != nil {
			break
		}
	}

	if start == nil {
		v := alignment.Spans[0].Start
		start = &v
	}
	if end == nil {
		v := alignment.Spans[len(alignment.Spans)-1].End
		end = &v
	}
	return &AudioWindow{Start: *start, End: *end}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
