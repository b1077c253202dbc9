// Package markup post-processes rendered listing HTML so a product with
// several matching variants fans out into one card per variant. It is a
// bounded, single-purpose scanner over card fragments, not an HTML parser:
// correctness only needs to hold for card boundaries and the image/link
// attribute rewrites enumerated below. When a card cannot be located the
// product degrades to its single rendered card.
package markup

import (
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"
)

// VariantCard carries the values rewritten into one cloned card.
type VariantCard struct {
	ImageURL string
	Srcset   string // empty removes srcset/data-srcset instead of leaving a stale one
	URL      string // attribute-qualified variant URL
}

// CardPlan describes the fan-out for one product: the clones to produce
// and the href values that identify this product's anchors. OriginalURLs
// holds the plain product URL plus the first variant's attribute-qualified
// URL; anchors are compared against both, literally and through the
// encodings the rendering layer may have applied.
type CardPlan struct {
	ProductID    int64
	OriginalURLs []string
	Variants     []VariantCard // one per extra card, in queue order
}

// Augment locates each plan's card in the rendered fragment, clones it once
// per extra variant with rewritten image and link attributes, and splices
// the clones in after the original. Plans whose marker or tag boundaries
// cannot be located are skipped; the rest of the fragment is untouched.
func Augment(fragment string, plans []CardPlan) string {
	applicable := make([]CardPlan, 0, len(plans))
	for _, p := range plans {
		if len(p.Variants) == 0 {
			continue
		}
		applicable = append(applicable, p)
	}
	// Left-to-right by marker position keeps output deterministic when
	// several products fan out in one fragment.
	sort.SliceStable(applicable, func(i, j int) bool {
		return markerIndex(fragment, applicable[i].ProductID) < markerIndex(fragment, applicable[j].ProductID)
	})

	for _, p := range applicable {
		idx := markerIndex(fragment, p.ProductID)
		if idx < 0 {
			continue
		}
		start, end, ok := cardBounds(fragment, idx)
		if !ok {
			continue
		}
		card := fragment[start:end]
		var sb strings.Builder
		sb.WriteString(card)
		for _, vc := range p.Variants {
			sb.WriteString(cloneCard(card, vc, p.OriginalURLs))
		}
		fragment = fragment[:start] + sb.String() + fragment[end:]
	}
	return fragment
}

// markerIndex finds the structural marker "post-{id}" as a whole class
// token. Plain substring search would let post-12 hit inside post-123.
func markerIndex(fragment string, productID int64) int {
	marker := fmt.Sprintf("post-%d", productID)
	from := 0
	for {
		idx := strings.Index(fragment[from:], marker)
		if idx < 0 {
			return -1
		}
		idx += from
		after := idx + len(marker)
		if boundaryBefore(fragment, idx) && boundaryAfter(fragment, after) {
			return idx
		}
		from = after
	}
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return false
	}
	c := s[idx-1]
	return c == ' ' || c == '"' || c == '\''
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return false
	}
	c := s[idx]
	return c == ' ' || c == '"' || c == '\''
}

// cardBounds computes the [start, end) slice of the card enclosing the
// marker occurrence. It scans backward to the nearest tag start, then
// forward tracking the nesting depth of same-named tags so cards that
// contain nested containers of the same tag name are not truncated at the
// first closing tag.
func cardBounds(fragment string, markerIdx int) (int, int, bool) {
	start := strings.LastIndexByte(fragment[:markerIdx], '<')
	if start < 0 {
		return 0, 0, false
	}
	name := tagName(fragment[start:])
	if name == "" {
		return 0, 0, false
	}

	depth := 0
	pos := start
	for pos < len(fragment) {
		lt := strings.IndexByte(fragment[pos:], '<')
		if lt < 0 {
			return 0, 0, false
		}
		pos += lt
		rest := fragment[pos:]
		switch {
		case hasTagPrefix(rest, "</"+name):
			gt := strings.IndexByte(rest, '>')
			if gt < 0 {
				return 0, 0, false
			}
			depth--
			if depth == 0 {
				return start, pos + gt + 1, true
			}
			pos += gt + 1
		case hasTagPrefix(rest, "<"+name):
			gt := strings.IndexByte(rest, '>')
			if gt < 0 {
				return 0, 0, false
			}
			if !strings.HasSuffix(strings.TrimRight(rest[:gt], " \t\n"), "/") {
				depth++
			} else if pos == start {
				// The marker's own tag is self-closing: the card is just that tag.
				return start, pos + gt + 1, true
			}
			pos += gt + 1
		default:
			pos++
		}
	}
	return 0, 0, false
}

// tagName extracts the element name from a string starting at '<'.
// Closing tags and non-elements yield "".
func tagName(s string) string {
	if len(s) < 2 || s[0] != '<' {
		return ""
	}
	i := 1
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	if i == 1 {
		return ""
	}
	return strings.ToLower(s[1:i])
}

// hasTagPrefix reports whether s starts with the given tag prefix followed
// by a name boundary, so "<li" does not match "<link".
func hasTagPrefix(s, prefix string) bool {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return false
	}
	if len(s) == len(prefix) {
		return false
	}
	return !isNameByte(s[len(prefix)])
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-'
}

// cloneCard rewrites one copy of the original card for a specific variant:
// first image src (and data-src), srcset attributes, and every anchor href
// that points at the original product.
func cloneCard(card string, vc VariantCard, originalURLs []string) string {
	card = replaceAttrValue(card, "src", vc.ImageURL, true)
	card = replaceAttrValue(card, "data-src", vc.ImageURL, true)
	if vc.Srcset == "" {
		card = removeAttr(card, "srcset")
		card = removeAttr(card, "data-srcset")
	} else {
		card = replaceAttrValue(card, "srcset", vc.Srcset, false)
		card = replaceAttrValue(card, "data-srcset", vc.Srcset, false)
	}
	return rewriteHrefs(card, originalURLs, vc.URL)
}

// findAttr locates attribute name="value" (or single-quoted) at or after
// from. attrStart covers the leading whitespace so the attribute can be
// removed cleanly.
func findAttr(s, name string, from int) (attrStart, valStart, valEnd int, ok bool) {
	needle := name + "="
	for i := from; i < len(s); {
		idx := strings.Index(s[i:], needle)
		if idx < 0 {
			return 0, 0, 0, false
		}
		idx += i
		if idx == 0 || !isSpaceByte(s[idx-1]) {
			i = idx + len(needle)
			continue
		}
		q := idx + len(needle)
		if q >= len(s) || (s[q] != '"' && s[q] != '\'') {
			i = q
			continue
		}
		end := strings.IndexByte(s[q+1:], s[q])
		if end < 0 {
			return 0, 0, 0, false
		}
		return idx - 1, q + 1, q + 1 + end, true
	}
	return 0, 0, 0, false
}

// replaceAttrValue swaps the value of the named attribute. When onlyFirst
// is false every occurrence in the card is rewritten.
func replaceAttrValue(s, name, value string, onlyFirst bool) string {
	from := 0
	for {
		_, valStart, valEnd, ok := findAttr(s, name, from)
		if !ok {
			return s
		}
		written := attrEncode(value, s[valStart:valEnd])
		s = s[:valStart] + written + s[valEnd:]
		if onlyFirst {
			return s
		}
		from = valStart + len(written) + 1
	}
}

// removeAttr strips every occurrence of the named attribute from the card.
func removeAttr(s, name string) string {
	for {
		attrStart, _, valEnd, ok := findAttr(s, name, 0)
		if !ok {
			return s
		}
		s = s[:attrStart] + s[valEnd+1:]
	}
}

// rewriteHrefs repoints anchors that reference the original product at the
// variant URL. Values are compared literally, HTML-unescaped and
// percent-decoded, since the renderer may have applied either encoding.
func rewriteHrefs(s string, originalURLs []string, variantURL string) string {
	from := 0
	for {
		_, valStart, valEnd, ok := findAttr(s, "href", from)
		if !ok {
			return s
		}
		raw := s[valStart:valEnd]
		if matchesAny(raw, originalURLs) {
			written := attrEncode(variantURL, raw)
			s = s[:valStart] + written + s[valEnd:]
			from = valStart + len(written) + 1
		} else {
			from = valEnd + 1
		}
	}
}

func matchesAny(raw string, urls []string) bool {
	unescaped := html.UnescapeString(raw)
	decoded := ""
	if d, err := url.QueryUnescape(unescaped); err == nil {
		decoded = d
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		if raw == u || unescaped == u || (decoded != "" && decoded == u) {
			return true
		}
	}
	return false
}

// attrEncode writes the new value in the same encoding style the original
// value used, so clones stay consistent with the surrounding markup.
func attrEncode(value, original string) string {
	if strings.Contains(original, "&amp;") {
		return html.EscapeString(value)
	}
	return value
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
