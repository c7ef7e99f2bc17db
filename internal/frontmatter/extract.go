// Package frontmatter extracts flat key/value headers from .mdx documents
// and caches them per path against the document's modification time.
package frontmatter

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Record is a flat frontmatter mapping. Values are string, bool or float64.
// A nil Record means the document has no header block; an empty Record
// means the block exists but declares no fields.
type Record map[string]any

// headerRe matches a header block at the very start of a document. The
// block needs at least one line between the delimiters: "---\n---\n" is not
// a header, "---\n\n---\n" is an empty one.
var headerRe = regexp.MustCompile(`\A---[ \t]*\r?\n((?s:.*?))\r?\n---[ \t]*\r?\n`)

// Extract returns the header block of content, or nil when the document
// does not start with one.
func Extract(content string) Record {
	m := headerRe.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	return parsePairs(m[1])
}

func parsePairs(body string) Record {
	out := Record{}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(key)] = scalar(strings.TrimSpace(value))
	}
	return out
}

// scalar converts a raw header value. Quoted values stay strings.
func scalar(v string) any {
	if unquoted, ok := unquote(v); ok {
		return unquoted
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if n, ok := number(v); ok {
		return n
	}
	return v
}

func unquote(v string) (string, bool) {
	if len(v) < 2 {
		return "", false
	}
	first, last := v[0], v[len(v)-1]
	if (first == '"' || first == '\'') && first == last {
		return v[1 : len(v)-1], true
	}
	return "", false
}

// number accepts decimal and exponent forms plus 0x, 0o and 0b prefixed
// integers. Go-only syntax (hex floats, digit separators) is rejected.
func number(v string) (float64, bool) {
	if v == "" {
		return 0, false
	}
	if len(v) > 2 && v[0] == '0' {
		if base := prefixBase(v[1]); base != 0 {
			if v[2] == '+' || v[2] == '-' {
				return 0, false
			}
			n, ok := new(big.Int).SetString(v[2:], base)
			if !ok {
				return 0, false
			}
			f, _ := new(big.Float).SetInt(n).Float64()
			if math.IsInf(f, 0) {
				return 0, false
			}
			return f, true
		}
	}
	if strings.ContainsAny(v, "xXpP_") {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

func prefixBase(c byte) int {
	switch c {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}
