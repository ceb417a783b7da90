package cli

import (
	"io"
	"runtime"

	"github.com/toyz/paranoia/internal/rubyast"
)

// Config holds the settings of one paranoia invocation
type Config struct {
	// Paths are the files and directories to inspect. Directories are
	// searched recursively; the Go-style `dir/...` form is accepted too.
	Paths []string

	// ConfigPath is an explicit configuration file; when empty the working
	// directory is searched
	ConfigPath string

	// WorkDir is where configuration is discovered and paths are reported
	// relative to; defaults to the process working directory
	WorkDir string

	Autocorrect bool

	// Diff prints corrections as unified diffs instead of writing files
	Diff bool

	Format string
	Jobs   int

	// Superclasses are appended to the configured watch list
	Superclasses []string

	IndentationWidth int

	Watch bool

	// Verbose enables detailed logging and error reporting
	Verbose bool

	Colors bool

	// MaxFileSize is the largest file inspected, in bytes; defaults to
	// rubyast.DefaultMaxFileSize
	MaxFileSize int

	// Stdout receives the report; defaults to os.Stdout
	Stdout io.Writer
}

func (c Config) jobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

func (c Config) paths() []string {
	if len(c.Paths) == 0 {
		return []string{"."}
	}
	return c.Paths
}

func (c Config) maxFileSize() int {
	if c.MaxFileSize > 0 {
		return c.MaxFileSize
	}
	return rubyast.DefaultMaxFileSize
}
