package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create test file %s: %v", name, err)
		}
	}
}

func relative(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestFileProcessor_RubyFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app/models/user.rb":          "class User < ApplicationRecord\nend\n",
		"app/models/concerns/soft.rb": "module Soft\nend\n",
		"lib/tasks/cleanup.rake":      "task :cleanup\n",
		"README.md":                   "# readme",
		"vendor/bundle/gem.rb":        "class Gem\nend\n",
		"node_modules/x/y.rb":         "",
		".git/hooks/pre.rb":           "",
		"tmp/cache.rb":                "",
		"db/schema.rb":                "",
	})

	fp := NewFileProcessor(root, []string{"db/schema.rb"})
	files, err := fp.RubyFiles(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{
		"app/models/concerns/soft.rb",
		"app/models/user.rb",
		"lib/tasks/cleanup.rake",
	}
	if got := relative(t, root, files); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestFileProcessor_ExcludeDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app/models/user.rb":     "",
		"app/legacy/old.rb":      "",
		"app/legacy/deep/old.rb": "",
	})

	fp := NewFileProcessor(root, []string{"app/legacy/**"})
	files, err := fp.RubyFiles(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := relative(t, root, files); !reflect.DeepEqual(got, []string{"app/models/user.rb"}) {
		t.Errorf("unexpected files %v", got)
	}

	dirs, err := fp.Directories(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, dir := range dirs {
		if filepath.Base(dir) == "legacy" {
			t.Errorf("excluded directory %s returned", dir)
		}
	}
}

func TestIsRubyFile(t *testing.T) {
	cases := map[string]bool{
		"user.rb":      true,
		"cleanup.rake": true,
		"user.rbx":     false,
		"Gemfile":      false,
		"schema.rb.bk": false,
	}
	for name, expected := range cases {
		if got := IsRubyFile(name); got != expected {
			t.Errorf("IsRubyFile(%q) = %v, expected %v", name, got, expected)
		}
	}
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		match   bool
	}{
		{"db/schema.rb", "db/schema.rb", true},
		{"db/*.rb", "db/schema.rb", true},
		{"db/*.rb", "db/migrate/001.rb", false},
		{"db/**/*.rb", "db/migrate/001.rb", true},
		{"db/**/*.rb", "db/schema.rb", true},
		{"**/*_spec.rb", "spec/models/user_spec.rb", true},
		{"*_spec.rb", "spec/models/user_spec.rb", true},
		{"vendor/**", "vendor/bundle/gem.rb", true},
		{"vendor", "vendor/bundle/gem.rb", true},
		{"vendor/", "vendor/bundle/gem.rb", true},
		{"./app/models/*.rb", "app/models/user.rb", true},
		{"app/models/*.rb", "app/controllers/users.rb", false},
	}

	for _, tt := range tests {
		if got := MatchGlob(tt.pattern, tt.name); got != tt.match {
			t.Errorf("MatchGlob(%q, %q) = %v, expected %v", tt.pattern, tt.name, got, tt.match)
		}
	}
}

func TestReadWriteSource(t *testing.T) {
	p := filepath.Join(t.TempDir(), "user.rb")
	if err := os.WriteFile(p, []byte("class User\nend\n"), 0640); err != nil {
		t.Fatal(err)
	}

	content, mode, err := ReadSource(p, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(content) != "class User\nend\n" {
		t.Errorf("unexpected content %q", content)
	}

	if err := WriteSource(p, []byte("class User\n  x\nend\n"), mode); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != mode {
		t.Errorf("expected mode %v to be kept, got %v", mode, info.Mode().Perm())
	}

	if _, _, err := ReadSource(p, 4); err == nil {
		t.Error("expected size limit error")
	}
	if _, _, err := ReadSource(filepath.Dir(p), 0); err == nil {
		t.Error("expected directory error")
	}
}
