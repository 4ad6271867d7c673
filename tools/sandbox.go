package tools

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m4xw311/nexus/config"
	"github.com/m4xw311/nexus/errors"
)

// Sandbox confines every file capability to a root directory. Hidden and
// read-only glob masks from the filesystem_access config narrow access
// further inside the root.
type Sandbox struct {
	root     string
	hidden   []string
	readOnly []string
}

func NewSandbox(root string, fsAccess config.FilesystemAccess) (*Sandbox, error) {
	if root == "" {
		return nil, errors.New("sandbox root must not be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid sandbox root '%s'", root)
	}
	return &Sandbox{
		root:     filepath.Clean(abs),
		hidden:   fsAccess.Hidden,
		readOnly: fsAccess.ReadOnly,
	}, nil
}

// Root returns the absolute sandbox root directory.
func (s *Sandbox) Root() string { return s.root }

// Resolve normalizes a path argument against the root and returns its
// absolute form. Any path escaping the root, whether through ".." segments
// or an outside absolute path, fails with a scope violation before any I/O
// is attempted. Hidden paths are invisible to every capability.
func (s *Sandbox) Resolve(path string) (string, error) {
	if path == "" {
		return "", errors.E(errors.KindScopeViolation, "path must not be empty")
	}

	cleaned := filepath.Clean(path)
	abs := cleaned
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.root, cleaned)
	}

	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return "", errors.WrapKind(err, errors.KindScopeViolation, "path '%s' cannot be resolved against the sandbox root", path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.E(errors.KindScopeViolation, "path '%s' resolves outside the sandbox root", path)
	}

	hidden, err := matchesAny(rel, s.hidden)
	if err != nil {
		return "", err
	}
	if hidden {
		return "", errors.E(errors.KindScopeViolation, "path '%s' is hidden", path)
	}

	return abs, nil
}

// ResolveForWrite is Resolve plus the read-only mask.
func (s *Sandbox) ResolveForWrite(path string) (string, error) {
	abs, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	rel, _ := filepath.Rel(s.root, abs)
	readOnly, err := matchesAny(rel, s.readOnly)
	if err != nil {
		return "", err
	}
	if readOnly {
		return "", errors.E(errors.KindScopeViolation, "path '%s' is read-only", path)
	}
	return abs, nil
}

// matchesAny checks a root-relative path against a set of glob patterns.
func matchesAny(rel string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		match, err := doublestar.PathMatch(pattern, rel)
		if err != nil {
			return false, errors.Wrapf(err, "invalid glob pattern '%s'", pattern)
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}
