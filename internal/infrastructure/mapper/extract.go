package mapper

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/tidwall/gjson"
)

// jsonCandidates returns the valid JSON documents found in an agent answer,
// most specific first: fenced code blocks, then the whole answer, then the
// first valid balanced object or array embedded in prose.
func jsonCandidates(text string) []gjson.Result {
	var (
		out  []gjson.Result
		seen = map[string]struct{}{}
	)
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || !gjson.Valid(raw) {
			return
		}
		if _, ok := seen[raw]; ok {
			return
		}
		seen[raw] = struct{}{}
		out = append(out, gjson.Parse(raw))
	}

	for _, block := range fencedBlocks(text) {
		add(block)
	}
	add(text)
	if embedded, ok := extractFirstJSON(text); ok {
		add(embedded)
	}
	return out
}

// fencedBlocks renders the answer as markdown and collects the text of every
// code block.
func fencedBlocks(text string) []string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	rendered := markdown.ToHTML([]byte(text), p, nil)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rendered))
	if err != nil {
		return nil
	}

	var blocks []string
	doc.Find("pre code").Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s.Text())
	})
	return blocks
}

// extractFirstJSON finds the first outermost balanced {...} or [...] that is
// valid JSON, skipping braces used as plain prose.
func extractFirstJSON(s string) (string, bool) {
	for offset := 0; offset < len(s); {
		start := strings.IndexAny(s[offset:], "{[")
		if start == -1 {
			return "", false
		}
		start += offset
		if candidate, ok := balancedAt(s, start); ok && gjson.Valid(candidate) {
			return candidate, true
		}
		offset = start + 1
	}
	return "", false
}

// balancedAt returns the bracketed span opening at s[start].
func balancedAt(s string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch char {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch char {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
