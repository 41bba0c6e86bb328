package utils

import (
	"regexp"
	"strings"
)

var (
	markdownLink = regexp.MustCompile(`(?i)^\[(.*?)\]\((https?://[^)\s]+)\)$`)

	quotePairs = [][2]string{
		{`"`, `"`},
		{`'`, `'`},
		{"“", "”"},
		{"‘", "’"},
		{"«", "»"},
	}

	schemelessHosts = []string{"youtube.com", "www.youtube.com", "youtu.be"}
)

// NormalizeURL turns loosely pasted link text into an absolute URL. It returns
// an empty string when nothing usable is left, and NormalizeURL(NormalizeURL(s))
// always equals NormalizeURL(s).
func NormalizeURL(raw string) string {
	s := raw
	// every pass either shrinks the string or adds the scheme once
	for {
		next := normalizePass(s)
		if next == s {
			break
		}
		s = next
	}

	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return ""
	}

	return s
}

// NormalizeURLs normalizes every entry and drops the ones that come out empty.
func NormalizeURLs(raw []string) []string {
	urls := make([]string, 0, len(raw))

	for _, r := range raw {
		if u := NormalizeURL(r); u != "" {
			urls = append(urls, u)
		}
	}

	return urls
}

func normalizePass(s string) string {
	s = unquote(strings.TrimSpace(s))

	if m := markdownLink.FindStringSubmatch(s); m != nil {
		return m[2]
	}

	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	s = strings.TrimSpace(s)

	if len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.TrimRight(s, ").,;")

	for _, host := range schemelessHosts {
		if strings.HasPrefix(s, host) {
			return "https://" + s
		}
	}

	return s
}

func unquote(s string) string {
	for _, q := range quotePairs {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			return strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
		}
	}

	return s
}
