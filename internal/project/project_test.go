package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeDescriptor(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, DescriptorName), []byte(content), 0644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	return root
}

func TestLoad(t *testing.T) {
	root := writeDescriptor(t, `
[project]
name = "Demo.Package"
version = "1.2.3"
`)

	p, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "Demo.Package" {
		t.Fatalf("Name = %q", p.Name)
	}
	if p.Version != "1.2.3" {
		t.Fatalf("Version = %q", p.Version)
	}
	if p.Root != root {
		t.Fatalf("Root = %q, want %q", p.Root, root)
	}
}

func TestLoadMissingDescriptor(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrNoDescriptor) {
		t.Fatalf("err = %v, want ErrNoDescriptor", err)
	}
}

func TestLoadMissingName(t *testing.T) {
	root := writeDescriptor(t, `
[project]
version = "1.0.0"
`)

	_, err := Load(root)
	if !errors.Is(err, ErrDescriptor) {
		t.Fatalf("err = %v, want ErrDescriptor", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	root := writeDescriptor(t, `[project`)

	_, err := Load(root)
	if !errors.Is(err, ErrDescriptor) {
		t.Fatalf("err = %v, want ErrDescriptor", err)
	}
}

func TestLoadDynamicVersion(t *testing.T) {
	root := writeDescriptor(t, `
[project]
name = "demo"
dynamic = ["version"]
`)

	p, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Version != "" {
		t.Fatalf("Version = %q, want empty for dynamic version", p.Version)
	}
	if p.SDistName() != "" {
		t.Fatalf("SDistName = %q, want empty for dynamic version", p.SDistName())
	}
	if p.WheelPrefix() != "" {
		t.Fatalf("WheelPrefix = %q, want empty for dynamic version", p.WheelPrefix())
	}
}

func TestNormalizedName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"demo", "demo"},
		{"Demo.Package", "demo-package"},
		{"friendly_bard", "friendly-bard"},
		{"weird--..__name", "weird-name"},
	}

	for _, tt := range tests {
		p := &Project{Name: tt.name}
		if got := p.NormalizedName(); got != tt.want {
			t.Errorf("NormalizedName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestArtifactNames(t *testing.T) {
	p := &Project{Name: "Demo.Package", Version: "1.2.3"}

	if got := p.DistName(); got != "demo_package" {
		t.Fatalf("DistName = %q", got)
	}
	if got := p.SDistName(); got != "demo_package-1.2.3.tar.gz" {
		t.Fatalf("SDistName = %q", got)
	}
	if got := p.WheelPrefix(); got != "demo_package-1.2.3-" {
		t.Fatalf("WheelPrefix = %q", got)
	}
}
