// Package archive writes catalog snapshots and raw scan logs to disk.
package archive

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"subcatalog/internal/models"
	"subcatalog/internal/tools"

	"github.com/xuri/excelize/v2"
)

// TargetSource is the part of the catalog a backup reads.
type TargetSource interface {
	AllTargets(ctx context.Context) []models.Target
}

type BackupResult struct {
	Targets int
	Files   []string
}

var header = []string{"name", "tags", "validated", "records", "last_scanned", "created_at"}

// Backup exports every target to targets.csv, targets.xlsx and a plain
// target_subdomains.txt inside dir.
func Backup(ctx context.Context, src TargetSource, dir string) (BackupResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BackupResult{}, err
	}

	targets := src.AllTargets(ctx)
	rows := make([][]string, 0, len(targets))
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		rows = append(rows, row(t))
		names = append(names, t.Name)
	}

	res := BackupResult{Targets: len(targets)}

	csvPath := filepath.Join(dir, "targets.csv")
	if err := writeCSV(csvPath, rows); err != nil {
		return res, fmt.Errorf("write %s: %w", csvPath, err)
	}
	res.Files = append(res.Files, csvPath)

	xlsxPath := filepath.Join(dir, "targets.xlsx")
	if err := writeXLSX(xlsxPath, rows); err != nil {
		return res, fmt.Errorf("write %s: %w", xlsxPath, err)
	}
	res.Files = append(res.Files, xlsxPath)

	txtPath := filepath.Join(dir, "target_subdomains.txt")
	if err := tools.WriteLines(txtPath, names); err != nil {
		return res, fmt.Errorf("write %s: %w", txtPath, err)
	}
	res.Files = append(res.Files, txtPath)

	return res, nil
}

func row(t models.Target) []string {
	validated := ""
	if t.Validated != nil {
		validated = strconv.FormatBool(*t.Validated)
	}
	lastScanned := ""
	if t.LastScanned != nil {
		lastScanned = t.LastScanned.UTC().Format(time.DateTime)
	}
	return []string{t.Name, t.Tags, validated, t.Records, lastScanned, t.CreatedAt.UTC().Format(time.DateTime)}
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csv.NewWriter(f).WriteAll(append([][]string{header}, rows...)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "targets"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	for i, r := range append([][]string{header}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(r))
		for j, v := range r {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
