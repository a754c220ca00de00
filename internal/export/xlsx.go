package export

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

const defaultSheet = "Leads"

// XLSXExporter writes every record to a single-sheet workbook.
type XLSXExporter struct {
	Path  string
	Sheet string
}

// NewXLSX creates an XLSXExporter writing to path.
func NewXLSX(path string) *XLSXExporter {
	return &XLSXExporter{Path: path, Sheet: defaultSheet}
}

func (e *XLSXExporter) Name() string { return "xlsx" }

func (e *XLSXExporter) ForRun(runID string) Exporter {
	return &XLSXExporter{Path: RunPath(e.Path, runID), Sheet: e.Sheet}
}

func (e *XLSXExporter) Export(_ context.Context, records []model.CompanyRecord) error {
	sheetName := e.Sheet
	if sheetName == "" {
		sheetName = defaultSheet
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add sheet %s", sheetName)
	}

	addRow(sheet, Columns)
	for _, rec := range records {
		addRow(sheet, Row(rec))
	}

	if err := f.Save(e.Path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", e.Path)
	}
	zap.L().Info("xlsx: export complete", zap.String("path", e.Path), zap.Int("rows", len(records)))
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
