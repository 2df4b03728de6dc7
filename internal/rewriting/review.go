package rewriting

import (
	"fmt"
	"regexp"
	"strings"
)

// maxInlineItems is the longest enumeration allowed without bullet points
const maxInlineItems = 3

var factPatterns = []struct {
	kind    string
	pattern *regexp.Regexp
}{
	{kind: "salary figure", pattern: regexp.MustCompile(`£\s?\d[\d,]*(?:\.\d+)?(?:k\b)?`)},
	{kind: "date", pattern: regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}/\d{2,4}\b`)},
	{kind: "date", pattern: regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b`)},
	{kind: "grade", pattern: regexp.MustCompile(`\b(?:AA|AO|EO|HEO|SEO|G6|G7|SCS(?:\s?PB)?\s?[1-4]?|Grade\s[67])\b`)},
}

var (
	enumerationSplit = regexp.MustCompile(`\s*(?:,|;|\band\b)\s*`)
	thousandsSep     = regexp.MustCompile(`(\d),(\d)`)
)

// CheckInventedFacts lists salary figures, dates and grade codes that appear in
// rewritten but not in original. The result is advisory; nil means nothing was found.
func CheckInventedFacts(original, rewritten string) []string {
	known := normalizeFact(original)

	var flags []string
	seen := make(map[string]bool)

	for _, fp := range factPatterns {
		for _, match := range fp.pattern.FindAllString(rewritten, -1) {
			norm := normalizeFact(match)
			if seen[norm] || strings.Contains(known, norm) {
				continue
			}
			seen[norm] = true
			flags = append(flags, fmt.Sprintf("%s %q does not appear in the original text", fp.kind, strings.TrimSpace(match)))
		}
	}

	if len(flags) == 0 {
		return nil
	}
	return flags
}

// CheckBulletStyle flags lines that enumerate more than three items inline instead of as bullets
func CheckBulletStyle(text string) []string {
	var flags []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isBullet(trimmed) {
			continue
		}
		items := 0
		plain := thousandsSep.ReplaceAllString(strings.TrimRight(trimmed, "."), "$1$2")
		for _, part := range enumerationSplit.Split(plain, -1) {
			if part != "" {
				items++
			}
		}
		if items > maxInlineItems {
			flags = append(flags, fmt.Sprintf("list of %d items is not bulleted: %q", items, truncate(trimmed, 60)))
		}
	}
	return flags
}

// ReviewFlags runs every advisory check on a rewrite of original
func ReviewFlags(original, rewritten string) []string {
	flags := CheckInventedFacts(original, rewritten)
	return append(flags, CheckBulletStyle(rewritten)...)
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "• ")
}

// normalizeFact lowercases and removes whitespace so "£38, 000" and "£38,000" compare equal
func normalizeFact(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
