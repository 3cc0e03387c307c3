package render

import (
	"regexp"
	"strings"
)

var (
	docLine     = regexp.MustCompile(`(?m)^[ \t]*\*[ \t]?(.*\n)`)
	docOpen     = regexp.MustCompile(`(?m)^[ \t]?/\*{2}\s*`)
	docClose    = regexp.MustCompile(`(?m)[ \t]?\*/\s?$`)
	docParam    = regexp.MustCompile(`(?m)^[ \t]*@(param)[ \t]+(\w*)[ \t]+(.*)$`)
	docReturn   = regexp.MustCompile(`(?m)^[ \t]*@(return)[ \t]+(.*)$`)
	docOtherTag = regexp.MustCompile(`(?m)^[ \t]?@.*\n?`)
)

// Markdown converts a groovydoc comment to markdown. Comment markers are
// stripped, @param and @return become bullets, other tags are dropped and
// line breaks become markdown hard breaks.
func Markdown(doc string) string {
	if doc == "" {
		return ""
	}
	s := strings.ReplaceAll(doc, "\r\n", "\n")
	s = docLine.ReplaceAllString(s, "${1}")
	s = docOpen.ReplaceAllString(s, "")
	s = docClose.ReplaceAllString(s, "")
	s = docParam.ReplaceAllString(s, "- *${1}* **${2}** - ${3}")
	s = docReturn.ReplaceAllString(s, "- *${1}* - ${2}")
	s = docOtherTag.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, "\n", "  \n")
}
