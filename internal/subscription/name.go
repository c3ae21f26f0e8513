package subscription

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const defaultNodeName = "Node"

var (
	bracketed      = regexp.MustCompile(`\([^)]*\)`)
	afterPipe      = regexp.MustCompile(`\|.*`)
	spaces         = regexp.MustCompile(`\s+`)
	advertPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s*free[-.]nodes`),
		regexp.MustCompile(`(?i)\s*v2clash\.blog`),
		regexp.MustCompile(`(?i)\s*mibei77\.com`),
		regexp.MustCompile(`(?i)\s*clashnode\.cc`),
		regexp.MustCompile(`(?i)\s*clashnodev2ray`),
		regexp.MustCompile(`(?i)\s*freeclashnode`),
		regexp.MustCompile(`(?i)\s*freev2raynode`),
		regexp.MustCompile(`\s*持续更新`),
		regexp.MustCompile(`\s*20\d\d-\d{1,2}-\d{1,2}`),
		regexp.MustCompile(`\s*@[\w.-]+`),
		regexp.MustCompile(`(?i)[^：|]+：\s*[\w-]+\.(?:com|net|org|cn|io|top|xyz|cc|me|tv)\b`),
	}
)

// CleanName strips advertising from the #fragment of uri and re-encodes it.
// A name left shorter than two characters becomes "Node". URIs without a
// fragment are returned unchanged.
func CleanName(uri string) string {
	i := strings.LastIndex(uri, "#")
	if i < 0 {
		return uri
	}

	name := percentDecode(uri[i+1:])
	name = bracketed.ReplaceAllString(name, "")
	name = afterPipe.ReplaceAllString(name, "")
	for _, p := range advertPatterns {
		name = p.ReplaceAllString(name, "")
	}
	name = spaces.ReplaceAllString(name, " ")
	name = strings.Trim(name, " -|")

	if utf8.RuneCountInString(name) < 2 {
		name = defaultNodeName
	}

	return uri[:i] + "#" + strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}
