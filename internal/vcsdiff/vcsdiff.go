// Package vcsdiff adapts git as the Diff Source: it reports repository
// identity and produces change sets the Incremental Indexer consumes to
// drive diff-based refreshes. Ref validation happens before any diff is
// computed so a bad ref surfaces as an error, never an empty diff.
package vcsdiff

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
)

// Status is a single-letter git diff status code, optionally carrying a
// similarity percentage for renames/copies (e.g. "R90").
type Status string

const (
	StatusAdded       Status = "A"
	StatusModified    Status = "M"
	StatusDeleted     Status = "D"
	StatusRenamed     Status = "R"
	StatusCopied      Status = "C"
	StatusTypeChanged Status = "T"
	StatusUnmerged    Status = "U"
	StatusUnknown     Status = "?"
)

// ChangedFile is one entry of a Diff's changedFiles list.
type ChangedFile struct {
	Path       string
	OldPath    string
	Status     Status
	Similarity int
}

// Source identifies how a Diff was produced.
type Source string

const (
	SourceLastCommit  Source = "last_commit"
	SourceCommitRange Source = "commit_range"
	SourceWorkingDir  Source = "working_directory"
)

// Diff is the Diff Source's uniform output shape (spec §4.M).
type Diff struct {
	DiffSource   Source
	Previous     string
	Head         string
	ChangedFiles []ChangedFile
}

// Info describes repository identity, used to decide whether diff-based
// refresh is even possible.
type Info struct {
	IsRepository   bool
	RootPath       string
	CurrentBranch  string
	IsDetachedHead bool
	HeadCommit     string
}

// Range is a parsed "a..b" or "a...b" ref range.
type Range struct {
	From string
	To   string
}

// Adapter is the Diff Source, backed by the git CLI via os/exec.
type Adapter struct {
	projectRoot string
}

func New(projectRoot string) *Adapter {
	return &Adapter{projectRoot: projectRoot}
}

func (a *Adapter) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = a.projectRoot
	out, err := cmd.Output()
	return string(out), err
}

// Info reports whether projectRoot is inside a git work tree and, if so,
// its current branch/head state.
func (a *Adapter) Info() Info {
	root, err := a.run("rev-parse", "--show-toplevel")
	if err != nil {
		return Info{IsRepository: false}
	}
	info := Info{IsRepository: true, RootPath: strings.TrimSpace(root)}

	if head, err := a.run("rev-parse", "HEAD"); err == nil {
		info.HeadCommit = strings.TrimSpace(head)
	}

	branch, err := a.run("branch", "--show-current")
	branch = strings.TrimSpace(branch)
	if err != nil || branch == "" {
		info.IsDetachedHead = true
		if short, err := a.run("rev-parse", "--short", "HEAD"); err == nil {
			info.CurrentBranch = "detached-" + strings.TrimSpace(short)
		} else {
			info.CurrentBranch = "unknown"
		}
		return info
	}
	info.CurrentBranch = branch
	return info
}

// validateRef rejects anything git itself doesn't recognize as a commit-ish,
// so an invalid ref produces InvalidRef instead of silently diffing nothing.
func (a *Adapter) validateRef(ref string) error {
	if ref == "" {
		return indexerr.New(indexerr.InvalidRef, "empty ref")
	}
	if _, err := a.run("rev-parse", "--verify", "--quiet", ref+"^{commit}"); err != nil {
		return indexerr.Wrap(indexerr.InvalidRef, "ref does not resolve to a commit: "+ref, err)
	}
	return nil
}

// LastCommitChanges returns the change set introduced by HEAD relative to
// its parent. Returns (nil, nil) when there is no parent commit (initial
// commit in the repository).
func (a *Adapter) LastCommitChanges() (*Diff, error) {
	if err := a.validateRef("HEAD"); err != nil {
		return nil, err
	}
	if err := a.validateRef("HEAD~1"); err != nil {
		return nil, nil
	}

	out, err := a.run("diff", "--name-status", "-M", "-C", "HEAD~1", "HEAD")
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "git diff HEAD~1 HEAD", err)
	}
	head, _ := a.run("rev-parse", "HEAD")
	prev, _ := a.run("rev-parse", "HEAD~1")

	return &Diff{
		DiffSource:   SourceLastCommit,
		Previous:     strings.TrimSpace(prev),
		Head:         strings.TrimSpace(head),
		ChangedFiles: parseNameStatus(out),
	}, nil
}

// RangeChanges returns the change set between two validated refs.
func (a *Adapter) RangeChanges(fromRef, toRef string) (*Diff, error) {
	if err := a.validateRef(fromRef); err != nil {
		return nil, err
	}
	if err := a.validateRef(toRef); err != nil {
		return nil, err
	}

	out, err := a.run("diff", "--name-status", "-M", "-C", fromRef, toRef)
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "git diff "+fromRef+" "+toRef, err)
	}
	return &Diff{
		DiffSource:   SourceCommitRange,
		Previous:     fromRef,
		Head:         toRef,
		ChangedFiles: parseNameStatus(out),
	}, nil
}

// WorkingDirectoryChanges returns uncommitted changes (staged + unstaged)
// relative to HEAD. Always succeeds for a valid repository; an empty
// working tree yields a Diff with no changed files rather than an error.
func (a *Adapter) WorkingDirectoryChanges() (*Diff, error) {
	out, err := a.run("status", "--porcelain=v1", "--no-renames")
	if err != nil {
		return nil, indexerr.Wrap(indexerr.VCSNotARepository, "git status", err)
	}
	return &Diff{
		DiffSource:   SourceWorkingDir,
		ChangedFiles: parsePorcelainStatus(out),
	}, nil
}

// ParseRange parses "a..b" or "a...b" into a Range. Returns nil, nil for
// a string that is not a range (the caller should treat it as a single ref).
func ParseRange(s string) (*Range, error) {
	sep := "..."
	idx := strings.Index(s, sep)
	if idx < 0 {
		sep = ".."
		idx = strings.Index(s, sep)
	}
	if idx < 0 {
		return nil, nil
	}
	from := s[:idx]
	to := s[idx+len(sep):]
	if from == "" || to == "" {
		return nil, indexerr.New(indexerr.InvalidRef, "malformed range: "+s)
	}
	return &Range{From: from, To: to}, nil
}

func parseNameStatus(out string) []ChangedFile {
	var changed []ChangedFile
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		statusField := fields[0]
		status, similarity := splitStatus(statusField)

		cf := ChangedFile{Status: status, Similarity: similarity}
		if (status == StatusRenamed || status == StatusCopied) && len(fields) >= 3 {
			cf.OldPath = fields[1]
			cf.Path = fields[2]
		} else {
			cf.Path = fields[1]
		}
		changed = append(changed, cf)
	}
	return changed
}

func splitStatus(field string) (Status, int) {
	if field == "" {
		return StatusUnknown, 0
	}
	letter := Status(field[:1])
	if len(field) > 1 {
		if pct, err := strconv.Atoi(field[1:]); err == nil {
			return letter, pct
		}
	}
	return letter, 0
}

// parsePorcelainStatus maps `git status --porcelain=v1` two-letter codes
// down to the same single-letter taxonomy as diff --name-status.
func parsePorcelainStatus(out string) []ChangedFile {
	var changed []ChangedFile
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		code := line[:2]
		path := strings.TrimSpace(line[3:])

		var status Status
		switch {
		case strings.Contains(code, "A"):
			status = StatusAdded
		case strings.Contains(code, "D"):
			status = StatusDeleted
		case strings.Contains(code, "R"):
			status = StatusRenamed
		case strings.Contains(code, "M"):
			status = StatusModified
		case code == "??":
			status = StatusUnknown
		default:
			status = StatusModified
		}
		changed = append(changed, ChangedFile{Path: path, Status: status})
	}
	return changed
}
