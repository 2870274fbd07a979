package cliutil

import (
	"strings"
	"unicode/utf8"
)

// wrapSlop is how far short of the full width most lines are broken, so that a short word is not
// left dangling on a line by itself.
const wrapSlop = 5

// Wrap the string `s` to a maximum width `w`.  Pass `w` == 0 to do no wrapping.
//
// In order to have some room for slop to avoid things like a short word being on a line by itself,
// most lines are actually wrapped to `w - 5`.
func Wrap(w int, s string) string {
	return wrap(0, w, s)
}

// Wrap the string `s` to a maximum width `w` with leading indent `i`.  The first line is not
// indented (this is assumed to be done by caller).  Pass `w` == 0 to do no wrapping
//
// In order to have some room for slop to avoid things like a short word being on a line by itself,
// most lines are actually wrapped to `w - 5`.
func WrapIndent(i, w int, s string) string {
	return wrap(i, w, s)
}

func wrap(indent, width int, s string) string {
	if width <= 0 {
		return s
	}
	limit := width - indent - wrapSlop
	if limit < 1 {
		limit = 1
	}
	hardLimit := width - indent

	var ret strings.Builder
	for pIdx, paragraph := range strings.Split(s, "\n") {
		if pIdx > 0 {
			ret.WriteString("\n")
			if paragraph != "" {
				ret.WriteString(strings.Repeat(" ", indent))
			}
		}
		// Preserve leading indentation of pre-formatted lines.
		if strings.HasPrefix(paragraph, " ") {
			ret.WriteString(paragraph)
			continue
		}
		words := strings.Fields(paragraph)
		lineLen := 0
		for wIdx, word := range words {
			wordLen := utf8.RuneCountInString(word)
			if wIdx > 0 {
				// Two spaces after a sentence, as in the input.
				sep := " "
				if strings.HasSuffix(words[wIdx-1], ".") {
					sep = "  "
				}
				switch {
				case lineLen+len(sep)+wordLen <= limit:
					ret.WriteString(sep)
					lineLen += len(sep)
				case wIdx == len(words)-1 && lineLen+len(sep)+wordLen <= hardLimit:
					// The last word may use the slop.
					ret.WriteString(sep)
					lineLen += len(sep)
				default:
					ret.WriteString("\n")
					ret.WriteString(strings.Repeat(" ", indent))
					lineLen = 0
				}
			}
			ret.WriteString(word)
			lineLen += wordLen
		}
	}
	return ret.String()
}
