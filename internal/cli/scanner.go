package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/paranoia/internal/errors"
	"github.com/toyz/paranoia/internal/utils"
)

// DirectoryScanner resolves command line paths into the Ruby files to inspect
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a scanner; exclude patterns are relative to root
func NewDirectoryScanner(root string, exclude []string) *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(root, exclude),
	}
}

// Target is a resolved scan input
type Target struct {
	Path string

	// Explicit files are inspected even when they do not look like Ruby or
	// match an exclude pattern
	Explicit bool
	IsDir    bool
}

// Resolve turns paths into targets. Supports Go-style patterns like "./..."
// as an alias of the directory itself.
func (s *DirectoryScanner) Resolve(paths []string) ([]Target, error) {
	targets := make([]Target, 0, len(paths))

	for _, p := range paths {
		if strings.HasSuffix(p, "/...") || p == "..." {
			p = strings.TrimSuffix(strings.TrimSuffix(p, "..."), "/")
			if p == "" {
				p = "."
			}
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.FileSystemError("stat", p, err).
				WithSuggestion("pass existing files or directories")
		}

		targets = append(targets, Target{
			Path:     filepath.Clean(p),
			Explicit: !info.IsDir(),
			IsDir:    info.IsDir(),
		})
	}

	return targets, nil
}

// ScanFiles returns the deduplicated, sorted list of files to inspect
func (s *DirectoryScanner) ScanFiles(paths []string) ([]string, error) {
	targets, err := s.Resolve(paths)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, target := range targets {
		if !target.IsDir {
			add(target.Path)
			continue
		}

		found, err := s.fileProcessor.RubyFiles(target.Path)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ScanDirectories returns every directory below the given paths that may hold
// Ruby files; used to register watches
func (s *DirectoryScanner) ScanDirectories(paths []string) ([]string, error) {
	targets, err := s.Resolve(paths)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, target := range targets {
		roots := []string{filepath.Dir(target.Path)}
		if target.IsDir {
			found, err := s.fileProcessor.Directories(target.Path)
			if err != nil {
				return nil, err
			}
			roots = found
		}
		for _, dir := range roots {
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}

// Accepts reports whether a path discovered at runtime, for example by the
// watcher, should be inspected
func (s *DirectoryScanner) Accepts(p string) bool {
	return utils.IsRubyFile(p) && !s.fileProcessor.Excluded(p)
}
