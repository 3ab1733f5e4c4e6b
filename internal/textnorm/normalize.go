package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// stripPattern removes whitespace plus the punctuation OCR tends to
// hallucinate around subtitle text: CJK ideographic punctuation,
// full-width and half-width quotes, brackets, separators and dashes.
var stripPattern = regexp.MustCompile(`[\s、。．，・_';:…「」『』【】（）()“”"'\-–—’‘‛]+`)

// Normalize canonicalizes recognized subtitle text for comparison.
// It applies Unicode NFKC compatibility normalization (folding
// full-width forms onto their half-width equivalents) and strips the
// punctuation set above. Whitespace-only input normalizes to "".
func Normalize(text string) string {
	s := norm.NFKC.String(strings.TrimSpace(text))
	return stripPattern.ReplaceAllString(s, "")
}
