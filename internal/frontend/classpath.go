package frontend

import (
	"archive/zip"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jward/groovyls/internal/ast"
)

// ExpandClasspath turns classpath entries into a sorted, de-duplicated list
// of jar files. An entry is a jar, a folder of jars, or a "dir/*" glob.
// Missing entries are skipped.
func ExpandClasspath(entries []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.HasSuffix(entry, "*") {
			entry = strings.TrimRight(strings.TrimSuffix(entry, "*"), `/\`)
		}
		info, err := os.Stat(entry)
		if err != nil {
			slog.Warn("skipping classpath entry", slog.String("entry", entry), slog.String("error", err.Error()))
			continue
		}
		if !info.IsDir() {
			if strings.EqualFold(filepath.Ext(entry), ".jar") {
				add(entry)
			}
			continue
		}
		files, err := os.ReadDir(entry)
		if err != nil {
			slog.Warn("skipping classpath folder", slog.String("entry", entry), slog.String("error", err.Error()))
			continue
		}
		for _, f := range files {
			if !f.IsDir() && strings.EqualFold(filepath.Ext(f.Name()), ".jar") {
				add(filepath.Join(entry, f.Name()))
			}
		}
	}
	sort.Strings(out)
	return out
}

// SplitLibraryFolders splits a ';'-separated list of folders.
func SplitLibraryFolders(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// jarClasses lists the top-level classes of a jar as member-less stubs.
func jarClasses(path string) ([]*ast.ClassNode, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("frontend: open jar %s: %w", path, err)
	}
	defer r.Close()

	var out []*ast.ClassNode
	for _, f := range r.File {
		name := f.Name
		if !strings.HasSuffix(name, ".class") || strings.HasPrefix(name, "META-INF/") {
			continue
		}
		name = strings.TrimSuffix(name, ".class")
		base := name[strings.LastIndexByte(name, '/')+1:]
		if strings.Contains(base, "$") || base == "module-info" || base == "package-info" {
			continue
		}
		pkg, simple := splitQualified(strings.ReplaceAll(name, "/", "."))
		out = append(out, &ast.ClassNode{
			Span:      ast.NoSpan,
			Name:      simple,
			Package:   pkg,
			Modifiers: ast.ModPublic,
			External:  true,
		})
	}
	return out, nil
}
