package transaction

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"logfix/internal/logging"
	"logfix/internal/rewrite"
)

func newTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	engine, err := rewrite.NewEngine(rewrite.DefaultOptions())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	logger := logging.NewLogger(logging.Config{Level: logging.ErrorLevel, Output: io.Discard})
	return NewManager(engine, logger, opts)
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

const fixable = `class OrderService
{
    public void Fail(Order order, Exception ex)
    {
        _logger.LogError("Order {Id} failed", order.Id, ex);
    }
}
`

func TestProcessRewritesAndBacksUp(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "OrderService.cs", fixable)

	m := newTestManager(t, Options{RunID: "testrun1"})
	res := m.Process(path)

	if res.Outcome != FileRewritten {
		t.Fatalf("outcome = %s (err: %v)", res.Outcome, res.Err)
	}
	if res.Tally.Rewritten != 1 {
		t.Errorf("tally = %+v", res.Tally)
	}
	if res.Changes != 0 {
		t.Errorf("Changes = %d, want 0: rewritten calls belong in the tally, not the substitution count", res.Changes)
	}

	updated, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read updated: %v", err)
	}
	if !strings.Contains(string(updated), `LogError($"Order {order.Id} failed", ex);`) {
		t.Errorf("file not rewritten:\n%s", updated)
	}

	if res.BackupPath != path+".bak_testrun1" {
		t.Errorf("backup path = %q", res.BackupPath)
	}
	backup, err := os.ReadFile(res.BackupPath)
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(backup) != fixable {
		t.Error("backup does not match the original content")
	}
}

func TestProcessUnchangedWritesNothing(t *testing.T) {
	dir := t.TempDir()
	content := `class C { void M() { _logger.LogInfo("started"); } }`
	path := writeSource(t, dir, "C.cs", content)

	info, _ := os.Stat(path)
	before := info.ModTime()

	m := newTestManager(t, Options{})
	res := m.Process(path)

	if res.Outcome != FileUnchanged {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("unexpected files written: %v", entries)
	}
	info, _ = os.Stat(path)
	if !info.ModTime().Equal(before) {
		t.Error("unchanged file was touched")
	}
}

func TestProcessDryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "D.cs", fixable)

	m := newTestManager(t, Options{DryRun: true})
	res := m.Process(path)

	if res.Outcome != FileRewritten {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if res.BackupPath != "" {
		t.Error("dry run should not create a backup")
	}
	after, _ := os.ReadFile(path)
	if string(after) != fixable {
		t.Error("dry run modified the file")
	}
}

func TestProcessCompressedBackup(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "E.cs", fixable)

	m := newTestManager(t, Options{RunID: "zrun", Compress: true})
	res := m.Process(path)

	if res.Outcome != FileRewritten {
		t.Fatalf("outcome = %s (err: %v)", res.Outcome, res.Err)
	}
	if !strings.HasSuffix(res.BackupPath, ".bak_zrun.zst") {
		t.Fatalf("backup path = %q", res.BackupPath)
	}

	f, err := os.Open(res.BackupPath)
	if err != nil {
		t.Fatalf("open backup: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()
	decoded, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(decoded) != fixable {
		t.Error("compressed backup does not round-trip to the original")
	}
}

func TestProcessMissingFile(t *testing.T) {
	m := newTestManager(t, Options{})
	res := m.Process(filepath.Join(t.TempDir(), "nope.cs"))

	if res.Outcome != FileErrored {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if res.Err == nil {
		t.Error("errored result should carry the error")
	}
}

func TestProcessInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Bad.cs")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 'L', 'o', 'g'}, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m := newTestManager(t, Options{})
	res := m.Process(path)
	if res.Outcome != FileErrored {
		t.Fatalf("outcome = %s", res.Outcome)
	}
}

func TestCommitAbortsWhenBackupFails(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "F.cs", fixable)

	// Occupy the backup path with a directory so the backup write fails.
	m := newTestManager(t, Options{RunID: "blocked"})
	if err := os.Mkdir(m.BackupPath(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	res := m.Process(path)
	if res.Outcome != FileErrored {
		t.Fatalf("outcome = %s", res.Outcome)
	}

	after, _ := os.ReadFile(path)
	if string(after) != fixable {
		t.Error("original must be untouched when the backup cannot be written")
	}
}

func TestCommitRefusesExistingBackup(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "F.cs", fixable)

	// A file at the backup path is an earlier run's pristine copy.
	m := newTestManager(t, Options{RunID: "repeat"})
	previous := "earlier run's original content\n"
	if err := os.WriteFile(m.BackupPath(path), []byte(previous), 0644); err != nil {
		t.Fatalf("seed backup: %v", err)
	}

	res := m.Process(path)
	if res.Outcome != FileErrored {
		t.Fatalf("outcome = %s, want ERROR on backup collision", res.Outcome)
	}

	after, _ := os.ReadFile(path)
	if string(after) != fixable {
		t.Error("original must be untouched on backup collision")
	}
	kept, _ := os.ReadFile(m.BackupPath(path))
	if string(kept) != previous {
		t.Error("pre-existing backup must never be overwritten")
	}
}

func TestProcessWithoutEngine(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "F.cs", fixable)

	logger := logging.NewLogger(logging.Config{Level: logging.ErrorLevel, Output: io.Discard})
	m := NewManager(nil, logger, Options{RunID: "noeng"})

	res := m.Process(path)
	if res.Outcome != FileErrored {
		t.Fatalf("outcome = %s, want ERROR for engine-less Process", res.Outcome)
	}

	after, _ := os.ReadFile(path)
	if string(after) != fixable {
		t.Error("original must be untouched")
	}
}

func TestApplyTransform(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "G.cs", "using Microsoft.Extensions.Logging;\nclass G {}\n")

	m := newTestManager(t, Options{RunID: "subst"})
	res := m.Apply(path, func(content string) (string, int) {
		out := strings.Replace(content,
			"using Microsoft.Extensions.Logging;",
			"using TradingPlatform.Core.Interfaces;", 1)
		if out == content {
			return content, 0
		}
		return out, 1
	})

	if res.Outcome != FileRewritten || res.Changes != 1 {
		t.Fatalf("result = %+v", res)
	}
	after, _ := os.ReadFile(path)
	if !strings.Contains(string(after), "TradingPlatform.Core.Interfaces") {
		t.Errorf("transform not applied:\n%s", after)
	}
	if _, err := os.Stat(res.BackupPath); err != nil {
		t.Errorf("backup missing: %v", err)
	}
}
