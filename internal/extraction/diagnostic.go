package extraction

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxSummaryLen = 512

// Summarize renders a body as a single log-friendly line. JSON bodies prefer
// the service's file_status; HTML pages (typically from a proxy in front of
// the service) are reduced to their title or visible text.
func Summarize(body ParsedBody) string {
	if obj, ok := body.Object(); ok {
		if status, ok := obj["file_status"].(string); ok && status != "" {
			return truncate(status)
		}
	}
	if _, ok := body.JSON(); ok {
		raw, err := body.MarshalJSON()
		if err != nil {
			return "<unprintable json>"
		}
		return truncate(string(raw))
	}

	text, _ := body.Text()
	text = strings.TrimSpace(text)
	if text == "" {
		return "<empty>"
	}
	if looksLikeHTML(text) {
		if s := htmlSummary(text); s != "" {
			return truncate(s)
		}
	}
	return truncate(collapseSpace(text))
}

func looksLikeHTML(s string) bool {
	head := strings.ToLower(s)
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.Contains(head, "<html")
}

func htmlSummary(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return ""
	}
	if title := collapseSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	doc.Find("script, style").Remove()
	return collapseSpace(doc.Find("body").Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string) string {
	if len(s) > maxSummaryLen {
		cut := maxSummaryLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	return s
}
