// Package ignore implements the Ignore Filter: a pure predicate over
// repo-relative paths that honors hierarchical .gitignore files (with
// negation and nested-directory inheritance) plus a handful of built-in
// patterns that are always excluded regardless of project configuration.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// StateDirName is the directory the indexer writes its own state into;
// it must never be walked or indexed.
const StateDirName = ".codeindex"

// builtinPatterns are always ignored, independent of any .gitignore file.
var builtinPatterns = []string{
	StateDirName + "/**",
	StateDirName,
	"**/*.log",
	".git/**",
	".git",
}

// rule is one compiled pattern line from a .gitignore file.
type rule struct {
	glob     glob.Glob
	negate   bool
	dirOnly  bool
	anchored bool
	raw      string
}

// scope is the set of rules that apply from one directory downward,
// inherited by every nested directory below it.
type scope struct {
	dir   string // repo-relative, "" for root
	rules []rule
}

// Filter is the compiled Ignore Filter for one project root.
type Filter struct {
	root   string
	scopes []scope // ordered root-first; later (deeper) scopes take precedence
}

// Load walks root looking for .gitignore files at every directory level,
// compiles them alongside the built-in patterns, and returns a Filter.
// Missing .gitignore files are not an error; a project with none still
// gets the built-in patterns.
func Load(root string) (*Filter, error) {
	f := &Filter{root: root}

	builtin, err := compileRules(builtinPatterns)
	if err != nil {
		return nil, err
	}
	f.scopes = append(f.scopes, scope{dir: "", rules: builtin})

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		relDir, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if relDir == "." {
			relDir = ""
		}
		relDir = filepath.ToSlash(relDir)

		if f.isIgnoredDir(relDir) {
			return filepath.SkipDir
		}

		giPath := filepath.Join(path, ".gitignore")
		lines, readErr := readLines(giPath)
		if readErr != nil {
			if os.IsNotExist(readErr) {
				return nil
			}
			return readErr
		}

		rules, compileErr := compileRules(lines)
		if compileErr != nil {
			return nil
		}
		if len(rules) > 0 {
			f.scopes = append(f.scopes, scope{dir: relDir, rules: rules})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// isIgnoredDir is the WalkDir-time shortcut used while still discovering
// .gitignore files: directories are checked against whatever scopes have
// been compiled so far (root-level and any ancestor).
func (f *Filter) isIgnoredDir(relDir string) bool {
	if relDir == "" {
		return false
	}
	return f.IsIgnored(relDir)
}

// IsIgnored reports whether relPath (slash-separated, relative to root)
// is excluded. Deeper scopes override shallower ones; within a scope the
// last matching rule wins, so a later `!pattern` can re-include a path an
// earlier rule excluded.
func (f *Filter) IsIgnored(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	ignored := false

	for _, sc := range f.scopes {
		if sc.dir != "" && !withinScope(relPath, sc.dir) {
			continue
		}
		local := relPath
		if sc.dir != "" {
			local = strings.TrimPrefix(relPath, sc.dir+"/")
		}
		for _, r := range sc.rules {
			if matches(r, local) {
				ignored = !r.negate
			}
		}
	}
	return ignored
}

func withinScope(relPath, scopeDir string) bool {
	return relPath == scopeDir || strings.HasPrefix(relPath, scopeDir+"/")
}

func matches(r rule, local string) bool {
	if r.glob.Match(local) {
		return true
	}
	// Unanchored patterns (no leading slash, no inner slash) match at
	// any depth, mirroring gitignore's "basename anywhere" rule.
	if !r.anchored {
		base := local
		if idx := strings.LastIndex(local, "/"); idx >= 0 {
			base = local[idx+1:]
		}
		if r.glob.Match(base) {
			return true
		}
	}
	return false
}

func compileRules(lines []string) ([]rule, error) {
	var rules []rule
	for _, line := range lines {
		line = strings.TrimRight(line, "\r\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		negate := strings.HasPrefix(trimmed, "!")
		if negate {
			trimmed = trimmed[1:]
		}

		dirOnly := strings.HasSuffix(trimmed, "/")
		trimmed = strings.TrimSuffix(trimmed, "/")

		anchored := strings.HasPrefix(trimmed, "/")
		trimmed = strings.TrimPrefix(trimmed, "/")
		if !anchored && strings.Contains(trimmed, "/") {
			anchored = true
		}

		pattern := trimmed
		if dirOnly {
			pattern = pattern + "/**"
		}

		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule{glob: g, negate: negate, dirOnly: dirOnly, anchored: anchored, raw: trimmed})
	}
	return rules, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
