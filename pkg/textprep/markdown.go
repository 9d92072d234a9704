// Package textprep prepares raw text or Markdown input for narration.
// It deliberately implements a fixed set of substitutions rather than a
// full Markdown parser: the output only has to read well aloud.
package textprep

import (
	"regexp"
	"strings"
)

// The order of these substitutions matters: fenced blocks must be removed
// before inline code spans, or a fence's content would be unwrapped as
// inline code instead of dropped.
var (
	fencedBlockRegex = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRegex  = regexp.MustCompile("`([^`]*)`")
	imageRegex       = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRegex        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingRegex     = regexp.MustCompile(`(?m)^ {0,3}#{1,6}[ \t]*`)
	bulletRegex      = regexp.MustCompile(`(?m)^ {0,3}[-*+][ \t]+`)
	orderedRegex     = regexp.MustCompile(`(?m)^ {0,3}\d+\.[ \t]+`)
	blankRunRegex    = regexp.MustCompile(`\n{3,}`)
	hspaceRunRegex   = regexp.MustCompile(`[ \t]{2,}`)
)

// Strip removes Markdown markup from raw text, leaving narratable plain text.
// Plain text passes through untouched apart from whitespace normalization,
// so Strip is idempotent.
func Strip(markdown string) string {
	txt := fencedBlockRegex.ReplaceAllString(markdown, "")
	txt = inlineCodeRegex.ReplaceAllString(txt, "$1")
	txt = imageRegex.ReplaceAllString(txt, "")
	txt = linkRegex.ReplaceAllString(txt, "$1")
	txt = headingRegex.ReplaceAllString(txt, "")
	txt = bulletRegex.ReplaceAllString(txt, "")
	txt = orderedRegex.ReplaceAllString(txt, "")
	txt = blankRunRegex.ReplaceAllString(txt, "\n\n")
	txt = hspaceRunRegex.ReplaceAllString(txt, " ")
	return strings.TrimSpace(txt)
}
