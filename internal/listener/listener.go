package listener

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/conluiben/excel-data-extraction/internal"
	"github.com/conluiben/excel-data-extraction/internal/config"
	"github.com/conluiben/excel-data-extraction/internal/pipeline"
	"github.com/conluiben/excel-data-extraction/internal/storage"
)

var inputTypes = map[string]internal.SourceType{
	".csv":  internal.SourceCSV,
	".xlsx": internal.SourceXLSX,
	".html": internal.SourceHTMLTable,
	".htm":  internal.SourceHTMLTable,
	".eml":  internal.SourceEmail,
	".pdf":  internal.SourcePDF,
}

// Service polls a drop directory and runs every new input file through the
// pipeline. Files are keyed by content hash, so a renamed copy of a processed
// file is skipped too.
type Service struct {
	db   *storage.DB
	cfg  config.Config
	proc *pipeline.ProcessingService
	log  *zap.Logger
	seen map[string]struct{}
}

func NewService(db *storage.DB, cfg config.Config, proc *pipeline.ProcessingService, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, cfg: cfg, proc: proc, log: log, seen: map[string]struct{}{}}
}

type CycleResult struct {
	Found     int
	Processed int
	Failed    int
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			s.log.Error("watch cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	entries, err := os.ReadDir(s.cfg.WatchDir)
	if err != nil {
		return CycleResult{}, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := inputTypes[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var res CycleResult
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		path := filepath.Join(s.cfg.WatchDir, name)
		hash, err := fileHash(path)
		if err != nil {
			s.log.Warn("cannot read input", zap.String("file", name), zap.Error(err))
			res.Failed++
			continue
		}
		done, err := s.alreadyProcessed(hash)
		if err != nil {
			return res, err
		}
		if done {
			continue
		}
		res.Found++

		inputType := inputTypes[strings.ToLower(filepath.Ext(name))]
		out := filepath.Join(s.cfg.OutputDir, "watch", outputName(name, s.cfg.WatchOutputFormat))
		run, err := s.proc.ProcessFile(string(inputType), path, out)
		if err != nil {
			s.log.Warn("input failed", zap.String("file", name), zap.Error(err))
			res.Failed++
			continue
		}
		if err := s.markProcessed(hash, run.RunID); err != nil {
			return res, err
		}
		res.Processed++
	}

	s.log.Info("watch cycle done",
		zap.String("dir", s.cfg.WatchDir),
		zap.Int("found", res.Found),
		zap.Int("processed", res.Processed),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (s *Service) alreadyProcessed(hash string) (bool, error) {
	if _, ok := s.seen[hash]; ok {
		return true, nil
	}
	if s.db == nil {
		return false, nil
	}
	v, err := s.db.GetMetadata("watch." + hash)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

func (s *Service) markProcessed(hash, runID string) error {
	s.seen[hash] = struct{}{}
	if s.db == nil {
		return nil
	}
	return s.db.SetMetadata("watch."+hash, runID)
}

func fileHash(path string) (string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:]), nil
}

func outputName(input, format string) string {
	if format == "" {
		format = "xlsx"
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	base = repl.Replace(base)
	if len(base) > 120 {
		base = base[:120]
	}
	return base + "." + format
}
