package listener

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/conluiben/excel-data-extraction/internal/config"
	"github.com/conluiben/excel-data-extraction/internal/pipeline"
	"github.com/conluiben/excel-data-extraction/internal/storage"
	"github.com/conluiben/excel-data-extraction/internal/vocab"
)

func TestRunCycleProcessesEachFileOnce(t *testing.T) {
	tmp := t.TempDir()
	inbox := filepath.Join(tmp, "inbox")
	if err := os.MkdirAll(inbox, 0o755); err != nil {
		t.Fatal(err)
	}
	csv := []byte("Description\nWIRE THHN RED\n")
	if err := os.WriteFile(filepath.Join(inbox, "a.csv"), csv, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(inbox, "notes.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := storage.Open(filepath.Join(tmp, "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cfg := config.Config{
		OutputDir:         filepath.Join(tmp, "out"),
		DescriptionColumn: "Description",
		InputEncoding:     "utf-8",
		KeywordScope:      "all",
		WatchDir:          inbox,
		WatchOutputFormat: "csv",
	}
	proc := pipeline.NewProcessingService(db, cfg, vocab.MustDefault(), nil)
	svc := NewService(db, cfg, proc, nil)

	res, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed != 1 || res.Failed != 0 {
		t.Fatalf("res=%+v", res)
	}
	if _, err := os.Stat(filepath.Join(tmp, "out", "watch", "a.csv")); err != nil {
		t.Fatal(err)
	}

	// A renamed copy has the same content hash.
	if err := os.WriteFile(filepath.Join(inbox, "b.csv"), csv, 0o644); err != nil {
		t.Fatal(err)
	}
	restarted := NewService(db, cfg, proc, nil)
	res, err = restarted.RunCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Found != 0 || res.Processed != 0 {
		t.Fatalf("res=%+v", res)
	}
}

func TestOutputName(t *testing.T) {
	if got := outputName("rfq <1>.eml", ""); got != "rfq__1_.xlsx" {
		t.Fatalf("got=%q", got)
	}
}
