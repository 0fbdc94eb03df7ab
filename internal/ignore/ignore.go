// Package ignore decides which files in the firmware drop directory are
// noise. Browsers and editors leave partial downloads and swap files next to
// the real firmware; those must never count as a drop.
//
// Patterns use gitignore syntax via go-git's glob matcher. A .dropignore
// file in the drop directory (or any subdirectory) adds patterns on top of
// the built-in ones. Parsed patterns are cached per directory.
package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// RulesFile is the name of the per-directory pattern file.
const RulesFile = ".dropignore"

// defaultPatterns cover in-progress downloads and editor droppings.
var defaultPatterns = []string{
	".*",
	"*.part",
	"*.crdownload",
	"*.download",
	"*.tmp",
	"*.swp",
	"*~",
	"Thumbs.db",
	"desktop.ini",
}

// Matcher checks paths inside a drop directory against the ignore rules.
type Matcher struct {
	rootPath         string
	builtin          []gitignore.Pattern
	dirPatterns      sync.Map // dir (string) -> []gitignore.Pattern
	combinedMatchers sync.Map // dir (string) -> gitignore.Matcher
}

// NewMatcher creates a Matcher rooted at the drop directory.
func NewMatcher(rootPath string) *Matcher {
	return &Matcher{
		rootPath: filepath.Clean(rootPath),
		builtin:  parsePatterns(defaultPatterns, nil),
	}
}

// Root returns the directory the matcher was created for.
func (m *Matcher) Root() string {
	return m.rootPath
}

// Match reports whether the given absolute path should be ignored.
// isDir must be true for directories so that directory-only patterns
// (e.g. "old/") apply.
func (m *Matcher) Match(path string, isDir bool) bool {
	path = filepath.Clean(path)
	if path == m.rootPath {
		return false
	}

	relPath, err := filepath.Rel(m.rootPath, path)
	if err != nil || strings.HasPrefix(relPath, "..") {
		// Outside the drop directory; nothing there is a drop.
		return true
	}

	components := pathToComponents(relPath)
	if len(components) == 0 {
		return false
	}

	return m.getCombinedMatcher(filepath.Dir(path)).Match(components, isDir)
}

// Invalidate drops cached patterns, e.g. after a .dropignore changed.
func (m *Matcher) Invalidate() {
	m.dirPatterns.Clear()
	m.combinedMatchers.Clear()
}

func pathToComponents(path string) []string {
	path = filepath.ToSlash(path)
	if path == "" || path == "." {
		return nil
	}

	return strings.Split(path, "/")
}

// parsePatterns converts gitignore lines into patterns scoped to domain
// (nil for the root).
func parsePatterns(lines []string, domain []string) []gitignore.Pattern {
	var patterns []gitignore.Pattern

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		patterns = append(patterns, gitignore.ParsePattern(line, domain))
	}

	return patterns
}

func (m *Matcher) getDirPatterns(dir string) []gitignore.Pattern {
	if v, ok := m.dirPatterns.Load(dir); ok {
		patterns, _ := v.([]gitignore.Pattern)
		return patterns
	}

	var domain []string
	if relPath, _ := filepath.Rel(m.rootPath, dir); relPath != "" && relPath != "." {
		domain = pathToComponents(relPath)
	}

	var patterns []gitignore.Pattern
	if content, err := os.ReadFile(filepath.Join(dir, RulesFile)); err == nil {
		patterns = parsePatterns(strings.Split(string(content), "\n"), domain)
	}

	m.dirPatterns.Store(dir, patterns)

	return patterns
}

// getCombinedMatcher stacks the built-in patterns and every .dropignore from
// the root down to dir. Later patterns win, so a "!keep.part" line in a
// .dropignore re-includes a file the defaults would ignore.
func (m *Matcher) getCombinedMatcher(dir string) gitignore.Matcher {
	if v, ok := m.combinedMatchers.Load(dir); ok {
		matcher, _ := v.(gitignore.Matcher)
		return matcher
	}

	allPatterns := append([]gitignore.Pattern{}, m.builtin...)

	var pathParts []string
	if relDir, _ := filepath.Rel(m.rootPath, dir); relDir != "" && relDir != "." {
		pathParts = pathToComponents(relDir)
	}

	currentPath := m.rootPath
	allPatterns = append(allPatterns, m.getDirPatterns(currentPath)...)

	for _, part := range pathParts {
		currentPath = filepath.Join(currentPath, part)
		allPatterns = append(allPatterns, m.getDirPatterns(currentPath)...)
	}

	matcher := gitignore.NewMatcher(allPatterns)
	m.combinedMatchers.Store(dir, matcher)

	return matcher
}
