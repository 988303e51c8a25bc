// Package transaction applies rewrites to files with backup-then-overwrite
// discipline: the backup is written completely before the original is
// touched, and the original is replaced atomically, so a failure at any
// point leaves the source file exactly as it was.
package transaction

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"logfix/internal/errors"
	"logfix/internal/logging"
	"logfix/internal/rewrite"
)

// FileOutcome classifies what happened to one file.
type FileOutcome string

const (
	// FileRewritten means at least one call was rewritten and the file replaced
	FileRewritten FileOutcome = "REWRITTEN"
	// FileUnchanged means no call needed rewriting; no write occurred
	FileUnchanged FileOutcome = "UNCHANGED"
	// FileErrored means an I/O failure; the file was skipped, the batch continues
	FileErrored FileOutcome = "ERROR"
)

// FileResult is the per-file outcome handed to the reporter.
type FileResult struct {
	Path       string        `json:"path"`
	Outcome    FileOutcome   `json:"outcome"`
	Tally      rewrite.Tally `json:"tally"`
	Changes    int           `json:"changes"`
	BackupPath string        `json:"backupPath,omitempty"`
	Err        error         `json:"-"`
	ErrMessage string        `json:"error,omitempty"`
}

// Options configures a Manager.
type Options struct {
	// RunID identifies this run in backup suffixes. Generated when empty.
	RunID string
	// SuffixBase is the backup suffix stem: <path>.<SuffixBase>_<RunID>.
	SuffixBase string
	// Compress writes zstd-compressed backups with a .zst extension.
	Compress bool
	// DryRun computes outcomes without writing anything.
	DryRun bool
}

// NewRunID returns a short unique identifier for one batch run.
func NewRunID() string {
	return uuid.New().String()[:8]
}

// Manager runs the rewrite engine over files and persists the results.
// A Manager is safe for concurrent use by multiple goroutines as long as
// no two goroutines process the same path.
type Manager struct {
	engine *rewrite.Engine
	logger *logging.Logger
	opts   Options
}

// NewManager creates a manager around a rewrite engine.
func NewManager(engine *rewrite.Engine, logger *logging.Logger, opts Options) *Manager {
	if opts.RunID == "" {
		opts.RunID = NewRunID()
	}
	if opts.SuffixBase == "" {
		opts.SuffixBase = "bak"
	}
	return &Manager{engine: engine, logger: logger, opts: opts}
}

// RunID returns the identifier stamped into this manager's backup names.
func (m *Manager) RunID() string {
	return m.opts.RunID
}

// Process reads path, rewrites its template calls, and persists the result.
// All I/O failures are converted into an errored FileResult; Process never
// aborts the batch.
func (m *Manager) Process(path string) FileResult {
	if m.engine == nil {
		return m.errored(path, errors.New(errors.InternalError,
			"manager was built without a rewrite engine; use Apply", nil))
	}

	original, res, ok := m.read(path)
	if !ok {
		return res
	}

	newContent, results := m.engine.Rewrite(original)
	tally := rewrite.TallyResults(results)

	// Changes stays zero here: it counts substitutions made through Apply,
	// while rewritten calls are carried in the tally.
	res = FileResult{Path: path, Tally: tally}
	if tally.Rewritten == 0 {
		res.Outcome = FileUnchanged
		return res
	}

	if m.opts.DryRun {
		res.Outcome = FileRewritten
		return res
	}

	backupPath, err := m.Commit(path, original, newContent)
	if err != nil {
		return m.errored(path, err)
	}

	res.Outcome = FileRewritten
	res.BackupPath = backupPath
	m.logger.Debug("File rewritten", map[string]interface{}{
		"path":      path,
		"rewritten": tally.Rewritten,
		"backup":    backupPath,
	})
	return res
}

// Apply runs an arbitrary content transform under the same backup and
// write discipline as Process. changes reports how many modifications the
// transform made; zero means the file is left untouched.
func (m *Manager) Apply(path string, transform func(content string) (string, int)) FileResult {
	original, res, ok := m.read(path)
	if !ok {
		return res
	}

	newContent, changes := transform(original)
	res = FileResult{Path: path, Changes: changes}
	if changes == 0 || newContent == original {
		res.Outcome = FileUnchanged
		res.Changes = 0
		return res
	}

	if m.opts.DryRun {
		res.Outcome = FileRewritten
		return res
	}

	backupPath, err := m.Commit(path, original, newContent)
	if err != nil {
		return m.errored(path, err)
	}

	res.Outcome = FileRewritten
	res.BackupPath = backupPath
	return res
}

// Commit writes the backup, then replaces path with newContent. The backup
// must land completely before the original is touched; the replacement
// itself goes through a temp file and rename so a crash mid-write cannot
// leave a half-written source file.
func (m *Manager) Commit(path, original, newContent string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.New(errors.IOFailure, "cannot stat file", err)
	}

	backupPath := m.BackupPath(path)
	if err := m.writeBackup(backupPath, original); err != nil {
		return "", errors.New(errors.IOFailure, "backup write failed, original untouched", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".logfix-*")
	if err != nil {
		return "", errors.New(errors.IOFailure, "cannot create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(newContent); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", errors.New(errors.IOFailure, "temp write failed, original untouched", err)
	}
	if err := tmp.Chmod(info.Mode()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", errors.New(errors.IOFailure, "temp chmod failed, original untouched", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", errors.New(errors.IOFailure, "temp close failed, original untouched", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", errors.New(errors.IOFailure, "rename over original failed", err)
	}

	return backupPath, nil
}

// BackupPath returns the sibling path a backup of path would be written to.
func (m *Manager) BackupPath(path string) string {
	p := fmt.Sprintf("%s.%s_%s", path, m.opts.SuffixBase, m.opts.RunID)
	if m.opts.Compress {
		p += ".zst"
	}
	return p
}

// writeBackup creates the backup exclusively: a file already at backupPath
// is an earlier run's pristine copy and must never be truncated, so a
// collision fails the commit before the original is touched.
func (m *Manager) writeBackup(backupPath, content string) error {
	f, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	if !m.opts.Compress {
		if _, err := f.Write([]byte(content)); err != nil {
			f.Close()
			os.Remove(backupPath)
			return err
		}
		return f.Close()
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		os.Remove(backupPath)
		return err
	}
	if _, err := enc.Write([]byte(content)); err != nil {
		enc.Close()
		f.Close()
		os.Remove(backupPath)
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		os.Remove(backupPath)
		return err
	}
	return f.Close()
}

func (m *Manager) read(path string) (string, FileResult, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", m.errored(path, errors.New(errors.IOFailure, "cannot read file", err)), false
	}
	if !utf8.Valid(content) {
		return "", m.errored(path, errors.New(errors.IOFailure, "file is not valid UTF-8", nil)), false
	}
	return string(content), FileResult{}, true
}

func (m *Manager) errored(path string, err error) FileResult {
	m.logger.Warn("File skipped", map[string]interface{}{
		"path":  path,
		"error": err.Error(),
	})
	return FileResult{Path: path, Outcome: FileErrored, Err: err, ErrMessage: err.Error()}
}
