// Package normalize canonicalizes raw search and filter input into the
// comparable forms matched against stored attribute term names and slugs.
package normalize

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Term holds the two normalized forms of one search term. Literal is the
// lowercased, trimmed input as typed (accents preserved); Slug is the
// accent-stripped, non-alphanumeric-collapsed form. Both are matched
// against stored names and slugs so either a human-typed accented word or
// a machine slug can hit.
type Term struct {
	Literal string
	Slug    string
}

// Terms splits raw input on commas (filter mode passes several terms at
// once) and normalizes each part. Parts that are empty after trimming are
// dropped silently.
func Terms(raw string) []Term {
	parts := strings.Split(raw, ",")
	out := make([]Term, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, Term{
			Literal: strings.ToLower(trimmed),
			Slug:    slug.Make(stripMarks(trimmed)),
		})
	}
	return out
}

// Key derives a cache key from the normalized forms of a term list.
// Identical input always yields the same key within a process.
func Key(terms []Term) string {
	h := fnv.New64a()
	for _, t := range terms {
		h.Write([]byte(t.Literal))
		h.Write([]byte{0})
		h.Write([]byte(t.Slug))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Patterns returns the LIKE patterns for a term list, deduplicated: one
// %literal% and one %slug% pattern per term. Matching name and slug
// columns against both forms covers all four name/slug x form combinations.
func Patterns(terms []Term) []string {
	seen := make(map[string]struct{}, len(terms)*2)
	out := make([]string, 0, len(terms)*2)
	add := func(form string) {
		if form == "" {
			return
		}
		p := "%" + escapeLike(form) + "%"
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, t := range terms {
		add(t.Literal)
		add(t.Slug)
	}
	return out
}

// escapeLike neutralizes LIKE metacharacters in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// stripCombining removes Unicode combining marks (category M) after NFD
// decomposition.
type stripCombining struct{ transform.NopResetter }

func (stripCombining) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if unicode.Is(unicode.M, r) {
			nSrc += size
			continue
		}
		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		copy(dst[nDst:], src[nSrc:nSrc+size])
		nDst += size
		nSrc += size
	}
	return nDst, nSrc, nil
}

// stripMarks removes accents ahead of slugging. Browser input may arrive
// NFD-decomposed (combining marks as separate runes), which the slug
// transliterator does not fold on its own.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, stripCombining{}, norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
