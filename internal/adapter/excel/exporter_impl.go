package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/user/pdfscraper-service/internal/entity"
)

const sheetName = "Sheet1"

var header = []any{"url", "title", "file_size", "file_path", "site_url"}

// Exporter writes every record to one .xlsx workbook, replacing any earlier file.
type Exporter struct {
	path string
}

func NewExporter(path string) *Exporter {
	return &Exporter{path: path}
}

// Export writes a header row and one row per record. A nil file_size or
// file_path leaves its cell empty. The workbook is saved beside the target
// and renamed over it, so a failed export keeps the previous file intact.
func (e *Exporter) Export(ctx context.Context, records []entity.PdfMetadata) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, m := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeRow(f, i+2, m); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(e.path), filepath.Base(e.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close workbook: %w", err)
	}
	if err := os.Rename(tmpName, e.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", e.path, err)
	}
	return nil
}

type cell struct {
	col   int
	value any
}

func writeRow(f *excelize.File, row int, m entity.PdfMetadata) error {
	cells := []cell{{1, m.URL}, {2, m.Title}, {5, m.SiteURL}}
	if m.FileSize != nil {
		cells = append(cells, cell{3, *m.FileSize})
	}
	if m.FilePath != nil {
		cells = append(cells, cell{4, *m.FilePath})
	}

	for _, c := range cells {
		name, err := excelize.CoordinatesToCellName(c.col, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, name, c.value); err != nil {
			return err
		}
	}
	return nil
}
