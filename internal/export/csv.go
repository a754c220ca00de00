package export

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// CSVExporter writes every record to a CSV file, one row each.
type CSVExporter struct {
	Path string
}

// NewCSV creates a CSVExporter writing to path.
func NewCSV(path string) *CSVExporter {
	return &CSVExporter{Path: path}
}

func (e *CSVExporter) Name() string { return "csv" }

func (e *CSVExporter) ForRun(runID string) Exporter { return NewCSV(RunPath(e.Path, runID)) }

func (e *CSVExporter) Export(_ context.Context, records []model.CompanyRecord) error {
	f, err := os.Create(e.Path)
	if err != nil {
		return eris.Wrapf(err, "csv: create %s", e.Path)
	}
	if err := WriteCSV(f, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "csv: close %s", e.Path)
	}
	zap.L().Info("csv: export complete", zap.String("path", e.Path), zap.Int("rows", len(records)))
	return nil
}

// WriteCSV writes the header and one row per record to w.
func WriteCSV(w io.Writer, records []model.CompanyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for _, rec := range records {
		if err := cw.Write(Row(rec)); err != nil {
			return eris.Wrapf(err, "csv: write row %s", rec.Name)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}
