package frontend

import (
	"path/filepath"
	"strings"
)

const (
	LangGroovy = "groovy"
	LangJava   = "java"
)

// extToLanguage maps file extensions to the languages the front end parses.
var extToLanguage = map[string]string{
	".groovy": LangGroovy,
	".gvy":    LangGroovy,
	".gy":     LangGroovy,
	".gsh":    LangGroovy,
	".java":   LangJava,
}

// LanguageForFile returns the language for a file path or URI based on its
// extension. Returns ("", false) if the extension is not recognized.
func LanguageForFile(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extToLanguage[ext]
	return lang, ok
}

// scriptClassName derives a script class name from the file base name.
func scriptClassName(uri string) string {
	base := uri
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	var b strings.Builder
	for i, r := range base {
		switch {
		case r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "script"
	}
	return b.String()
}
