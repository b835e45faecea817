package sandbox

import (
	"bytes"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"
)

func TestImageTag(t *testing.T) {
	tag := imageTag("/some/build-env.tar")

	if !strings.HasPrefix(tag, "pyship-env/") {
		t.Fatalf("tag %q missing pyship-env/ prefix", tag)
	}
	if !strings.HasSuffix(tag, ":latest") {
		t.Fatalf("tag %q missing :latest suffix", tag)
	}

	if imageTag("/some/build-env.tar") != tag {
		t.Fatal("imageTag is not deterministic")
	}
	if imageTag("/other/build-env.tar") == tag {
		t.Fatal("different archives produced the same tag")
	}
}

func TestBuildContainerID(t *testing.T) {
	a := buildContainerID("/projects/demo")
	b := buildContainerID("/projects/other")

	if !strings.HasPrefix(a, "pyship-build-") {
		t.Fatalf("id %q missing prefix", a)
	}
	if a == b {
		t.Fatal("different roots produced the same container ID")
	}
	if buildContainerID("/projects/demo") != a {
		t.Fatal("buildContainerID is not deterministic")
	}
}

func TestHostPlatform(t *testing.T) {
	p := hostPlatform()
	parts := strings.Split(p, "/")
	if len(parts) != 2 || parts[0] != "linux" || parts[1] == "" {
		t.Fatalf("hostPlatform = %q, want linux/<arch>", p)
	}
}

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name      string
		base      []string
		overrides []string
		want      []string
	}{
		{
			name:      "override existing key",
			base:      []string{"A=1", "B=2"},
			overrides: []string{"A=override"},
			want:      []string{"A=override", "B=2"},
		},
		{
			name:      "add new key",
			base:      []string{"A=1"},
			overrides: []string{"B=2"},
			want:      []string{"A=1", "B=2"},
		},
		{
			name:      "value with equals sign",
			base:      []string{"CMD=foo=bar"},
			overrides: nil,
			want:      []string{"CMD=foo=bar"},
		},
		{
			name:      "malformed entries skipped",
			base:      []string{"NOEQUALS", "A=1"},
			overrides: []string{"B=2"},
			want:      []string{"A=1", "B=2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeEnv(tt.base, tt.overrides)
			sort.Strings(got)
			sort.Strings(tt.want)

			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d\ngot:  %v\nwant: %v", len(got), len(tt.want), got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStreamProject(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"pyproject.toml": "[project]\nname = \"demo\"\n"})

	var buf bytes.Buffer
	err := streamProject(root, func(r io.Reader) error {
		_, err := io.Copy(&buf, r)
		return err
	})
	if err != nil {
		t.Fatalf("streamProject: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("no archive bytes produced")
	}
}

func TestStreamProjectUnblocksPackerOnSinkFailure(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"pyproject.toml": "[project]\nname = \"demo\"\n"})

	done := make(chan error, 1)
	go func() {
		// Fail before reading a single byte; the packer is blocked on
		// its first pipe write at this point.
		done <- streamProject(root, func(io.Reader) error {
			return errors.New("exec failed")
		})
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("sink failure was not reported")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("streamProject blocked after the sink failed")
	}
}

func TestEOFSignal(t *testing.T) {
	s := newEOFSignal(strings.NewReader("payload"))

	select {
	case <-s.eof:
		t.Fatal("eof signalled before the reader was drained")
	default:
	}

	if _, err := io.Copy(io.Discard, s); err != nil {
		t.Fatalf("drain: %v", err)
	}

	select {
	case <-s.eof:
	default:
		t.Fatal("eof not signalled after the reader was drained")
	}
}

func TestNextExecID(t *testing.T) {
	a := nextExecID()
	b := nextExecID()
	if a == b {
		t.Fatalf("nextExecID returned duplicate: %q", a)
	}
	if !strings.HasPrefix(a, "build-exec-") {
		t.Fatalf("id %q missing prefix", a)
	}
}
