package compiler

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/jward/groovyls/internal/contents"
	"github.com/jward/groovyls/internal/frontend"
)

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	".gradle":      {},
	".idea":        {},
	"node_modules": {},
	"build":        {},
	"target":       {},
	"out":          {},
}

// Scan returns the URIs of the Groovy and Java sources under root, sorted.
// Hidden and build output directories are skipped, as is anything matched by
// the root .gitignore or by the extra gitignore-syntax patterns.
func Scan(root string, patterns []string) ([]string, error) {
	if root == "" {
		return nil, nil
	}
	gi, err := loadIgnore(root, patterns)
	if err != nil {
		return nil, err
	}

	var uris []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if _, ok := frontend.LanguageForFile(name); !ok {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return nil
		}
		uris = append(uris, contents.URIFromPath(abs))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(uris)
	return uris, nil
}

func loadIgnore(root string, patterns []string) (*ignore.GitIgnore, error) {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err == nil {
		return ignore.CompileIgnoreFileAndLines(path, patterns...)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	return ignore.CompileIgnoreLines(patterns...), nil
}
