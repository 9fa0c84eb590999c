package token

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// ValidateGlyph reports whether value is exactly one Unicode codepoint once
// NFC-normalized: a namespace is a single emoji codepoint. NFC does not
// merge emoji sequences, so a glyph written with a skin-tone modifier, a
// ZWJ sequence or a variation selector is several codepoints and is
// rejected.
func ValidateGlyph(value string) error {
	composed := norm.NFC.String(value)
	count := 0
	for range composed {
		count++
		if count > 1 {
			return fmt.Errorf("glyph %q is not a single codepoint", value)
		}
	}
	if count == 0 {
		return fmt.Errorf("glyph is empty")
	}
	return nil
}

// EmptyNamespace is the sentinel glyph for the unnamed/default namespace.
const EmptyNamespace = "\U0001F534" // large red circle, mirrors the original compiler's globalNamespace
