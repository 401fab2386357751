package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/storycrawl/internal/config"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	if cmd.Use != "init" {
		t.Errorf("expected use 'init', got %q", cmd.Use)
	}

	flag := cmd.Flags().Lookup("output")
	if flag == nil {
		t.Fatal("expected output flag")
	}
	if flag.Shorthand != "o" || flag.DefValue != config.DefaultConfigFile {
		t.Errorf("unexpected output flag -%s %q", flag.Shorthand, flag.DefValue)
	}

	flag = cmd.Flags().Lookup("force")
	if flag == nil {
		t.Fatal("expected force flag")
	}
	if flag.Shorthand != "f" || flag.DefValue != "false" {
		t.Errorf("unexpected force flag -%s %q", flag.Shorthand, flag.DefValue)
	}
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates config file", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "nested", ".storycrawl")
		stdout, err := execute(t, NewInitCmd(), "-o", outputPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, outputPath) {
			t.Errorf("expected the path in output, got %q", stdout)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		for _, key := range []string{"defaults:", "stories:", "browser:", "site:"} {
			if !strings.Contains(string(content), key) {
				t.Errorf("expected config to contain %q", key)
			}
		}
	})

	t.Run("fails if file exists without force", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".storycrawl")
		if err := writeFile(outputPath, "existing"); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := execute(t, NewInitCmd(), "-o", outputPath)
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("expected 'already exists' error, got %v", err)
		}
	})

	t.Run("overwrites file with force flag", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".storycrawl")
		if err := writeFile(outputPath, "existing"); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		if _, err := execute(t, NewInitCmd(), "-o", outputPath, "-f"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(content) == "existing" {
			t.Error("expected file to be overwritten")
		}
	})
}

// TestConfigTemplate checks that the generated file loads.
func TestConfigTemplate(t *testing.T) {
	t.Parallel()

	outputPath := filepath.Join(t.TempDir(), ".storycrawl")
	if _, err := execute(t, NewInitCmd(), "-o", outputPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := config.LoadConfigFile(outputPath)
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	if f.Defaults.Depth == nil || *f.Defaults.Depth != -1 {
		t.Errorf("expected default depth -1, got %v", f.Defaults.Depth)
	}
	if f.Browser.Engine != config.EngineChrome {
		t.Errorf("expected engine chrome, got %q", f.Browser.Engine)
	}

	cfg := config.NewConfig()
	cfg.StoryIDs = []string{"1"}
	cfg.Output = "out.json"
	cfg.ApplyFile(f, func(string) bool { return false })
	if err := cfg.Validate(); err != nil {
		t.Errorf("template produces an invalid config: %v", err)
	}
}
