package utils

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/paranoia/internal/errors"
)

// RubyExtensions are the file suffixes inspected by default
var RubyExtensions = []string{".rb", ".rake"}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be descended into
type DirectoryFilter func(path string, info fs.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// FileProcessor finds the Ruby sources under a set of roots
type FileProcessor struct {
	root    string
	exclude []string
}

// NewFileProcessor creates a processor. Exclude patterns are slash-separated
// globs relative to root and may use `**` to match any number of directories.
func NewFileProcessor(root string, exclude []string) *FileProcessor {
	return &FileProcessor{
		root:    root,
		exclude: exclude,
	}
}

// RubyFileFilter accepts .rb and .rake files
func RubyFileFilter() FileFilter {
	return func(path string, info fs.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		return IsRubyFile(info.Name())
	}
}

// IsRubyFile reports whether name has a Ruby source extension
func IsRubyFile(name string) bool {
	ext := filepath.Ext(name)
	for _, candidate := range RubyExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// DefaultDirectoryFilter skips directories that never hold application code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"tmp":          true,
		"log":          true,
		"coverage":     true,
	}

	return func(path string, info fs.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// Skip hidden directories
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// Excluded reports whether p matches one of the exclude patterns
func (fp *FileProcessor) Excluded(p string) bool {
	if len(fp.exclude) == 0 {
		return false
	}

	rel := filepath.ToSlash(fp.relative(p))

	for _, pattern := range fp.exclude {
		if MatchGlob(pattern, rel) {
			return true
		}
	}
	return false
}

// relative returns p relative to the processor root when p lies below it
func (fp *FileProcessor) relative(p string) string {
	if fp.root == "" {
		return p
	}
	absRoot, err := filepath.Abs(fp.root)
	if err != nil {
		return p
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return rel
}

// WalkFiles walks rootDir and returns the files accepted by options, sorted
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.WalkDir(rootDir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return errors.FileSystemError("walk", p, err)
		}

		if entry.IsDir() {
			if p == rootDir {
				return nil
			}
			if options.DirectoryFilter != nil && !options.DirectoryFilter(p, entry) {
				return filepath.SkipDir
			}
			if fp.Excluded(p) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter != nil && !options.FileFilter(p, entry) {
			return nil
		}
		if fp.Excluded(p) {
			return nil
		}

		matchedFiles = append(matchedFiles, p)
		return nil
	})

	sort.Strings(matchedFiles)
	return matchedFiles, err
}

// RubyFiles returns the Ruby sources below rootDir using the default filters
func (fp *FileProcessor) RubyFiles(rootDir string) ([]string, error) {
	return fp.WalkFiles(rootDir, FileWalkOptions{
		FileFilter:      RubyFileFilter(),
		DirectoryFilter: DefaultDirectoryFilter(),
		SkipErrors:      true,
	})
}

// Directories returns every directory WalkFiles would descend into below
// rootDir, rootDir included
func (fp *FileProcessor) Directories(rootDir string) ([]string, error) {
	filter := DefaultDirectoryFilter()
	dirs := []string{rootDir}

	err := filepath.WalkDir(rootDir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.IsDir() || p == rootDir {
			return nil
		}
		if !filter(p, entry) || fp.Excluded(p) {
			return filepath.SkipDir
		}
		dirs = append(dirs, p)
		return nil
	})
	if err != nil {
		return nil, errors.FileSystemError("walk", rootDir, err)
	}
	return dirs, nil
}

// MatchGlob matches a slash-separated name against pattern. `**` matches zero
// or more path segments; other segments follow path.Match. A pattern without a
// slash also matches the base name, and a pattern naming a directory matches
// everything below it.
func MatchGlob(pattern, name string) bool {
	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
	name = strings.TrimPrefix(name, "./")

	if !strings.Contains(pattern, "/") {
		if ok, _ := path.Match(pattern, path.Base(name)); ok {
			return true
		}
	}

	if matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/")) {
		return true
	}

	// "vendor" or "vendor/" excludes the whole tree
	trimmed := strings.TrimSuffix(pattern, "/")
	return !strings.ContainsAny(trimmed, "*?[") && strings.HasPrefix(name, trimmed+"/")
}

func matchSegments(pattern, name []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(name); i++ {
				if matchSegments(rest, name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		if ok, _ := path.Match(pattern[0], name[0]); !ok {
			return false
		}
		pattern, name = pattern[1:], name[1:]
	}
	return len(name) == 0
}

// ReadSource reads a file, rejecting directories and files above maxSize
func ReadSource(filePath string, maxSize int64) ([]byte, os.FileMode, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, 0, errors.FileSystemError("stat", filePath, err)
	}
	if info.IsDir() {
		return nil, 0, errors.New(errors.FileSystemErrorCode, "is a directory").WithFile(filePath)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, 0, errors.Newf(errors.FileSystemErrorCode, "file is %d bytes, larger than the %d byte limit", info.Size(), maxSize).
			WithFile(filePath)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, 0, errors.FileSystemError("read", filePath, err)
	}
	return content, info.Mode().Perm(), nil
}

// WriteSource replaces filePath's content through a temporary file in the
// same directory, keeping mode
func WriteSource(filePath string, content []byte, mode os.FileMode) error {
	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return errors.FileSystemError("create temp file for", filePath, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.FileSystemError("write", filePath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.FileSystemError("write", filePath, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return errors.FileSystemError("chmod", filePath, err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		os.Remove(tmpName)
		return errors.FileSystemError("rename", filePath, err)
	}
	return nil
}
