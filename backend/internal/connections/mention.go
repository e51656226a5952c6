package connections

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"studio-journal/backend/internal/content"
)

// FallbackParagraph is where an unmentioned connection is anchored
const FallbackParagraph = 1

// minKeywordPhraseLen keeps near-empty slug phrases from matching everywhere
const minKeywordPhraseLen = 4

var (
	paragraphClose = regexp.MustCompile(`(?i)</p\s*>`)
	anyTag         = regexp.MustCompile(`<[^>]*>`)
)

var slugStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "in": {},
	"on": {}, "and": {}, "for": {}, "to": {},
}

// FindMentionIndex returns the 1-based paragraph of html that refers to c.
// A full-title match wins over a slug keyword match; ok is false when
// neither finds anything. Matching is plain substring search.
func FindMentionIndex(c content.Connection, html string) (int, bool) {
	return findMention(c, splitParagraphs(html))
}

// PositionConnections anchors every connection exactly once, in input
// order. Connections without a textual mention are kept at
// FallbackParagraph with MentionFound false rather than dropped.
func PositionConnections(cs []content.Connection, html string) []content.PositionedConnection {
	paragraphs := splitParagraphs(html)

	out := make([]content.PositionedConnection, 0, len(cs))
	for _, c := range cs {
		idx, ok := findMention(c, paragraphs)
		if !ok {
			idx = FallbackParagraph
		}
		out = append(out, content.PositionedConnection{
			Connection:     c,
			ParagraphIndex: idx,
			MentionFound:   ok,
		})
	}
	return out
}

func findMention(c content.Connection, paragraphs []string) (int, bool) {
	if title := strings.ToLower(c.Title); title != "" {
		if i := indexContaining(paragraphs, title); i >= 0 {
			return i + 1, true
		}
	}

	if phrase := SlugKeywordPhrase(c.Slug); utf8.RuneCountInString(phrase) >= minKeywordPhraseLen {
		if i := indexContaining(paragraphs, phrase); i >= 0 {
			return i + 1, true
		}
	}

	return 0, false
}

func indexContaining(paragraphs []string, needle string) int {
	for i, p := range paragraphs {
		if strings.Contains(p, needle) {
			return i
		}
	}
	return -1
}

// SlugKeywordPhrase turns "the-parking-lot-problem" into "parking lot problem"
func SlugKeywordPhrase(slug string) string {
	words := strings.Split(strings.ToLower(slug), "-")
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := slugStopwords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// splitParagraphs returns the lowercased plain text of every closed
// paragraph. Whatever follows the last closing tag is not a paragraph.
func splitParagraphs(html string) []string {
	segments := paragraphClose.Split(html, -1)
	if len(segments) <= 1 {
		return nil
	}
	segments = segments[:len(segments)-1]

	out := make([]string, len(segments))
	for i, seg := range segments {
		out[i] = strings.ToLower(plainText(seg))
	}
	return out
}

func plainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return anyTag.ReplaceAllString(fragment, "")
	}
	return doc.Text()
}
