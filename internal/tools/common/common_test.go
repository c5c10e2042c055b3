package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvFilePreservesExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nTOOLS_TEST_NEW=from-file\nTOOLS_TEST_KEEP=\"from-file\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("TOOLS_TEST_KEEP", "from-env")
	t.Setenv("TOOLS_TEST_NEW", "")
	_ = os.Unsetenv("TOOLS_TEST_NEW")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load env file: %v", err)
	}
	if got := os.Getenv("TOOLS_TEST_NEW"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("TOOLS_TEST_KEEP"); got != "from-env" {
		t.Fatalf("expected existing value preserved, got %q", got)
	}
}

func TestLoadEnvFileMissingIsNotAnError(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("expected nil for missing file, got %v", err)
	}
	if err := LoadEnvFile(""); err != nil {
		t.Fatalf("expected nil for empty path, got %v", err)
	}
}

func TestRunnerCIModeAppliesTimeout(t *testing.T) {
	r := Runner{Tool: "test", CI: true, Timeout: 50 * time.Millisecond}
	_, err := r.Run("wait", func(ctx context.Context) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRunnerUsesInteractiveOutsideCI(t *testing.T) {
	var gotTitle string
	r := Runner{Tool: "seed", UI: func(title string, _ time.Duration, fn Action) ([]string, error) {
		gotTitle = title
		return fn(context.Background())
	}}
	details, err := r.Run("demo", func(context.Context) ([]string, error) { return []string{"ok"}, nil })
	if err != nil || len(details) != 1 {
		t.Fatalf("unexpected result: %v %v", details, err)
	}
	if gotTitle != "seed demo" {
		t.Fatalf("unexpected title: %q", gotTitle)
	}
}

func TestWriteCIResult(t *testing.T) {
	var buf bytes.Buffer
	WriteCIResult(&buf, false, "migrate up", []string{"a"}, errors.New("boom"))
	var got CIResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OK || got.Title != "migrate up" || got.Error != "boom" || len(got.Details) != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
}
