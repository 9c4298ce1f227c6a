package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stratum/pkg/errors"
	stratumio "github.com/matzehuels/stratum/pkg/io"
)

// Output table names.
const (
	FileLevels   = "ism_levels.csv"
	FileScores   = "micmac.csv"
	FileEnriched = "problems_enriched.csv"
	FileDrivers  = "top_drivers.csv"
	FileReport   = "report.json"
)

// InputTables are copied from Bundle.InputDir when present.
var InputTables = []string{
	"problems.csv",
	"edges.csv",
	"stakeholders.csv",
	"stakeholder_links.csv",
	"comms_matrix.csv",
	"risk_register.csv",
}

// DirSink writes the publication directory.
type DirSink struct {
	Dir    string
	Logger *log.Logger
}

// NewDirSink returns a sink writing into dir.
func NewDirSink(dir string, logger *log.Logger) *DirSink {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &DirSink{Dir: dir, Logger: logger}
}

// Publish writes every output table and copies the input tables that exist.
// All outputs are rendered before the first file is written, so a report
// that cannot be encoded leaves the directory untouched. Files are replaced
// whole; a failed write never leaves a partial file.
func (s *DirSink) Publish(ctx context.Context, b *Bundle) error {
	if err := b.check(); err != nil {
		return err
	}
	if s.Dir == "" {
		return errors.New(errors.ErrCodeInvalidPath, "publication directory is required")
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", s.Dir)
	}

	rep := b.Report
	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{FileLevels, func(w io.Writer) error { return stratumio.WriteLevelsCSV(w, rep.Levels) }},
		{FileScores, func(w io.Writer) error { return stratumio.WriteScoresCSV(w, rep.Scores) }},
		{FileDrivers, func(w io.Writer) error { return stratumio.WriteScoresCSV(w, rep.TopDrivers) }},
		{FileEnriched, func(w io.Writer) error { return stratumio.WriteEnrichedCSV(w, b.Problems, b.Routes()) }},
		{FileReport, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}},
	}
	rendered := make([][]byte, len(outputs))
	for i, out := range outputs {
		var buf bytes.Buffer
		if err := out.write(&buf); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render %s", out.name)
		}
		rendered[i] = buf.Bytes()
	}
	for i, out := range outputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.writeFile(out.name, rendered[i]); err != nil {
			return err
		}
		s.Logger.Debug("wrote table", "file", out.name, "bytes", len(rendered[i]))
	}

	if b.InputDir == "" {
		return nil
	}
	copied := 0
	for _, name := range InputTables {
		if err := errors.ValidateTableName(name); err != nil {
			return err
		}
		src := filepath.Join(b.InputDir, name)
		if same(src, filepath.Join(s.Dir, name)) {
			continue
		}
		data, err := os.ReadFile(src)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", src)
		}
		if err := s.writeFile(name, data); err != nil {
			return err
		}
		copied++
	}
	s.Logger.Info("published", "dir", s.Dir, "copied", copied)
	return nil
}

// writeFile replaces name in the sink directory via a temp file.
func (s *DirSink) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.Dir, "."+name+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", name)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", name)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, name)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", name)
	}
	return nil
}

func same(a, b string) bool {
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}

var _ Sink = (*DirSink)(nil)
