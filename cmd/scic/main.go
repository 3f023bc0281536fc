package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/conluiben/excel-data-extraction/internal/config"
	"github.com/conluiben/excel-data-extraction/internal/listener"
	"github.com/conluiben/excel-data-extraction/internal/logging"
	"github.com/conluiben/excel-data-extraction/internal/pipeline"
	"github.com/conluiben/excel-data-extraction/internal/storage"
	"github.com/conluiben/excel-data-extraction/internal/vocab"
)

func main() {
	cfg, err := config.Load()
	must(err)
	must(cfg.Validate())

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	must(err)
	defer func() { _ = log.Sync() }()

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "", "csv|xlsx|html|eml|pdf")
		output := fs.String("output", "", "output .csv or .xlsx path")
		column := fs.String("column", "", "description column (overrides DESCRIPTION_COLUMN)")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *inType == "" || *output == "" {
			must(fmt.Errorf("--input --type --output are required"))
		}
		if strings.TrimSpace(*column) != "" {
			cfg.DescriptionColumn = *column
		}

		db := openDB(cfg)
		if db != nil {
			defer db.Close()
		}
		proc := pipeline.NewProcessingService(db, cfg, loadVocab(cfg, log), log)
		res, err := proc.ProcessFile(*inType, *input, *output)
		must(err)
		fmt.Printf("run done id=%s rows=%d extracted=%d degraded=%d column=%q output=%s\n",
			res.RunID, res.Rows, res.Extracted, res.Degraded, res.DescriptionColumn, *output)
	case "export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.String("runId", "", "stored run id (default: last run)")
		out := fs.String("out", "", "output .csv or .xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		cfg.PersistRuns = true
		db := openDB(cfg)
		defer db.Close()
		proc := pipeline.NewProcessingService(db, cfg, nil, log)
		n, err := proc.ExportRun(*runID, *out)
		must(err)
		fmt.Printf("exported %d rows to %s\n", n, *out)
	case "runs":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs")
		_ = fs.Parse(os.Args[2:])
		cfg.PersistRuns = true
		db := openDB(cfg)
		defer db.Close()
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			fmt.Printf("%s  %s  %s  rows=%d extracted=%d degraded=%d  %s\n",
				r.ID, r.CreatedAt, r.InputType, r.Rows, r.Extracted, r.Degraded, r.Input)
		}
	case "vocab:dump":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output yaml path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		must(vocab.WriteFile(loadVocab(cfg, log).Tables(), *out))
		fmt.Printf("vocabulary written to %s\n", *out)
	case "watch":
		db := openDB(cfg)
		if db != nil {
			defer db.Close()
		}
		proc := pipeline.NewProcessingService(db, cfg, loadVocab(cfg, log), log)
		svc := listener.NewService(db, cfg, proc, log)
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		log.Info("watching", zap.String("dir", cfg.WatchDir), zap.Int("intervalSec", cfg.WatchIntervalSec))
		must(svc.Run(ctx))
	default:
		usage()
		os.Exit(1)
	}
}

func openDB(cfg config.Config) *storage.DB {
	if !cfg.PersistRuns {
		return nil
	}
	db, err := storage.Open(cfg.DBPath)
	must(err)
	return db
}

func loadVocab(cfg config.Config, log *zap.Logger) *vocab.Registry {
	if strings.TrimSpace(cfg.VocabPath) == "" {
		return vocab.MustDefault()
	}
	reg, err := vocab.LoadFile(cfg.VocabPath)
	must(err)
	log.Debug("vocabulary loaded", zap.String("path", cfg.VocabPath))
	return reg
}

func usage() {
	fmt.Println("usage: scic <command>")
	fmt.Println("commands:")
	fmt.Println("  run --input=... --type=csv|xlsx|html|eml|pdf --output=...csv|xlsx [--column=Description]")
	fmt.Println("  export [--runId=...] --out=./out/result.xlsx")
	fmt.Println("  runs [--limit=20]")
	fmt.Println("  vocab:dump --out=./vocab.yaml")
	fmt.Println("  watch")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
