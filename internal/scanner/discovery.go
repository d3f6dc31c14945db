package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// skipDirs are directory names never descended into, regardless of
// configuration: version control, dependency and build output trees carry
// no statements worth reporting.
var skipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	".idea":        true,
	".vscode":      true,
	"vendor":       true,
	"node_modules": true,
	"build":        true,
	"dist":         true,
	"cache":        true,
	".cache":       true,
	"tmp":          true,
}

// compiledPattern holds both the pattern string and its compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery enumerates scannable source files under a root, applying the
// extension filter, the fixed skip-dir set, exclude globs and, when enabled,
// the root .gitignore. Exclusion is decided before descending into a subtree
// so ignored trees are never enumerated.
type FileDiscovery struct {
	rootDir    string
	extensions map[string]bool
	excludes   []compiledPattern
	gitignore  *ignore.GitIgnore
}

// NewFileDiscovery compiles the exclude patterns once. When respectGitignore
// is set and the root has a .gitignore, its rules apply on top of the
// exclude globs; a missing or unreadable .gitignore is not an error.
func NewFileDiscovery(rootDir string, extensions, excludePatterns []string, respectGitignore bool) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir:    rootDir,
		extensions: make(map[string]bool, len(extensions)),
	}

	for _, ext := range extensions {
		fd.extensions[ext] = true
	}

	for _, pattern := range excludePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		fd.excludes = append(fd.excludes, compiledPattern{pattern: pattern, glob: g})
	}

	if respectGitignore {
		gitignorePath := filepath.Join(rootDir, ".gitignore")
		if _, err := os.Stat(gitignorePath); err == nil {
			if gi, err := ignore.CompileIgnoreFile(gitignorePath); err == nil {
				fd.gitignore = gi
			}
		}
	}

	return fd, nil
}

// Discover walks the tree with an explicit directory stack and returns the
// eligible files in no particular order. Unreadable subtrees are recorded as
// errors; their files are simply absent and the walk continues elsewhere.
func (fd *FileDiscovery) Discover() ([]string, []FileError) {
	var files []string
	var errs []FileError

	stack := []string{fd.rootDir}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			errs = append(errs, FileError{Path: dir, Err: err})
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			if entry.IsDir() {
				if fd.skipDir(entry.Name(), path) {
					continue
				}
				stack = append(stack, path)
				continue
			}

			if fd.Eligible(path) {
				files = append(files, path)
			}
		}
	}

	return files, errs
}

// Eligible reports whether a single file path passes the extension filter
// and is not excluded. ScanFiles and the watcher apply this to externally
// supplied paths.
func (fd *FileDiscovery) Eligible(path string) bool {
	if !fd.extensions[filepath.Ext(path)] {
		return false
	}
	return !fd.excluded(fd.relSlash(path))
}

// Root returns the workspace root the discovery walks.
func (fd *FileDiscovery) Root() string {
	return fd.rootDir
}

// WatchableDir reports whether a directory belongs under a filesystem watch,
// applying the same skip-dir and exclusion rules as Discover.
func (fd *FileDiscovery) WatchableDir(path string) bool {
	if path == fd.rootDir {
		return true
	}
	return !fd.skipDir(filepath.Base(path), path)
}

func (fd *FileDiscovery) skipDir(name, path string) bool {
	if skipDirs[name] || name == ".debugsweep" {
		return true
	}
	return fd.excluded(fd.relSlash(path))
}

// excluded checks the exclude globs and gitignore against a slash-separated
// workspace-relative path. A directory also matches patterns written with a
// /** suffix, so "vendor/**" prunes the vendor tree itself.
func (fd *FileDiscovery) excluded(relPath string) bool {
	if relPath == "." || relPath == "" {
		return false
	}

	if fd.matchesAnyPattern(relPath) || fd.matchesAnyPattern(relPath+"/**") {
		return true
	}

	if fd.gitignore != nil && fd.gitignore.MatchesPath(relPath) {
		return true
	}

	return false
}

func (fd *FileDiscovery) matchesAnyPattern(path string) bool {
	for _, cp := range fd.excludes {
		if cp.glob.Match(path) {
			return true
		}
	}

	// A root-level path has no slash, so "**/name" style patterns cannot
	// match it directly; retry with the **/ prefix stripped.
	if !strings.Contains(path, "/") {
		for _, cp := range fd.excludes {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if g, err := glob.Compile(simplified, '/'); err == nil && g.Match(path) {
					return true
				}
			}
		}
	}

	return false
}

func (fd *FileDiscovery) relSlash(path string) string {
	rel, err := filepath.Rel(fd.rootDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
