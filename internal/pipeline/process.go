package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conluiben/excel-data-extraction/internal"
	"github.com/conluiben/excel-data-extraction/internal/config"
	"github.com/conluiben/excel-data-extraction/internal/extract"
	"github.com/conluiben/excel-data-extraction/internal/storage"
	"github.com/conluiben/excel-data-extraction/internal/vocab"
)

const metaLastRunID = "runs.last_id"

type ProcessingService struct {
	db  *storage.DB
	cfg config.Config
	reg *vocab.Registry
	log *zap.Logger
}

// NewProcessingService wires the pipeline. A nil db disables run persistence
// and a nil logger discards logs.
func NewProcessingService(db *storage.DB, cfg config.Config, reg *vocab.Registry, log *zap.Logger) *ProcessingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProcessingService{db: db, cfg: cfg, reg: reg, log: log}
}

type ProcessResult struct {
	RunID             string
	DescriptionColumn string
	Columns           []string
	Rows              int
	Extracted         int
	Degraded          int
}

// ProcessFile reads one input, widens every record and writes the output
// table. The run is stored when persistence is enabled.
func (s *ProcessingService) ProcessFile(inputType, inputPath, outputPath string) (ProcessResult, error) {
	start := time.Now()

	table, err := ReadTable(inputType, inputPath, ReadOptions{
		Encoding:          s.cfg.InputEncoding,
		DescriptionColumn: s.cfg.DescriptionColumn,
	})
	if err != nil {
		return ProcessResult{}, fmt.Errorf("read %s: %w", inputPath, err)
	}

	res, rows, err := s.ProcessTable(table)
	if err != nil {
		return ProcessResult{}, err
	}

	if err := WriteTable(res.Columns, rows, outputPath); err != nil {
		return ProcessResult{}, fmt.Errorf("write %s: %w", outputPath, err)
	}

	elapsed := time.Since(start)
	if s.db != nil {
		run := internal.RunRecord{
			ID:                res.RunID,
			Input:             inputPath,
			InputType:         inputType,
			DescriptionColumn: res.DescriptionColumn,
			Columns:           res.Columns,
			Rows:              res.Rows,
			Extracted:         res.Extracted,
			Degraded:          res.Degraded,
			DurationMs:        elapsed.Milliseconds(),
		}
		if err := s.db.SaveRun(run, rows); err != nil {
			return ProcessResult{}, fmt.Errorf("save run %s: %w", res.RunID, err)
		}
		if err := s.db.SetMetadata(metaLastRunID, res.RunID); err != nil {
			s.log.Warn("failed to record last run", zap.String("runId", res.RunID), zap.Error(err))
		}
	}

	s.log.Info("run complete",
		zap.String("runId", res.RunID),
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("rows", res.Rows),
		zap.Int("extracted", res.Extracted),
		zap.Int("degraded", res.Degraded),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

// ProcessTable widens every record of a table in input order.
func (s *ProcessingService) ProcessTable(table internal.Table) (ProcessResult, []internal.OutputRow, error) {
	scope, ok := extract.ParseKeywordScope(s.cfg.KeywordScope)
	if !ok {
		return ProcessResult{}, nil, fmt.Errorf("unsupported keyword scope: %s", s.cfg.KeywordScope)
	}

	res := ProcessResult{RunID: uuid.NewString()}
	log := s.log.With(zap.String("runId", res.RunID))

	detect := DetectDescriptionColumn(table.Columns, table.Records, s.cfg.DescriptionColumn, s.cfg.DetectSampleRows)
	res.DescriptionColumn = firstNonEmpty(detect.Column, s.cfg.DescriptionColumn)
	if detect.Column == "" {
		log.Warn("no description column found", zap.Strings("columns", table.Columns))
	} else {
		log.Debug("description column",
			zap.String("column", detect.Column),
			zap.String("reason", detect.Reason),
			zap.Float64("score", detect.Score),
		)
	}

	asm := NewAssembler(s.reg, res.DescriptionColumn, scope)
	res.Columns = asm.Columns(table.Columns)

	rows := make([]internal.OutputRow, 0, len(table.Records))
	for _, rec := range table.Records {
		row := asm.Assemble(rec)
		if row.Degraded {
			res.Degraded++
			fields := []zap.Field{zap.Int("line", rec.LineNo), zap.String("column", res.DescriptionColumn)}
			if msg, ok := rec.Meta["error"].(string); ok {
				fields = append(fields, zap.String("parseError", msg))
			}
			log.Warn("row missing description, passed through", fields...)
		}
		if row.Values[ColumnExtracted] == "Y" {
			res.Extracted++
		}
		rows = append(rows, row)
	}
	res.Rows = len(rows)
	return res, rows, nil
}

// ExportRun rewrites a stored run to a new output file.
func (s *ProcessingService) ExportRun(runID, outputPath string) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("run persistence is disabled")
	}
	if runID == "" {
		last, err := s.db.GetMetadata(metaLastRunID)
		if err != nil {
			return 0, err
		}
		if last == nil {
			return 0, fmt.Errorf("no stored runs")
		}
		runID = *last
	}

	run, err := s.db.MustRun(runID)
	if err != nil {
		return 0, err
	}
	rows, err := s.db.GetRunRows(run.ID)
	if err != nil {
		return 0, err
	}
	if err := WriteTable(run.Columns, rows, outputPath); err != nil {
		return 0, err
	}
	s.log.Info("run exported", zap.String("runId", run.ID), zap.String("output", outputPath), zap.Int("rows", len(rows)))
	return len(rows), nil
}
