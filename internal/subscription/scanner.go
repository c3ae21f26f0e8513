package subscription

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const DefaultMinLength = 20

var nodePattern = regexp.MustCompile(`(?i)(?:vmess|vless|trojan|ssr|ss|hysteria2|hysteria|socks5|reality)://[^\s\p{Z}<>"]+`)

// countSchemes reports how many node URIs start in text.
func countSchemes(text string) int {
	return len(nodePattern.FindAllStringIndex(text, -1))
}

// Scanner pulls node URIs out of free text. A match stops at whitespace,
// angle brackets or a double quote; adjacent URIs with no separator are
// returned as one match.
type Scanner struct {
	MinLength int
}

func NewScanner(minLength int) Scanner {
	return Scanner{MinLength: minLength}
}

// Scan returns every match of at least MinLength characters, deduplicated,
// in order of first appearance.
func (s Scanner) Scan(text string) []string {
	matches := nodePattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	nodes := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if utf8.RuneCountInString(m) < s.MinLength {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		nodes = append(nodes, m)
	}
	return nodes
}
