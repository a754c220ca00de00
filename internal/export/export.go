// Package export writes finalized lead records to files and CRMs.
package export

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Exporter writes a run's finalized records somewhere.
type Exporter interface {
	Export(ctx context.Context, records []model.CompanyRecord) error
	Name() string
}

// Columns is the tabular export header.
var Columns = []string{
	"Company Name",
	"Website",
	"Category",
	"Contact Email",
	"Pain Points",
	"Source URL",
	"Status",
	"Successful",
	"Review",
	"Status Detail",
}

// Row renders rec in Columns order.
func Row(rec model.CompanyRecord) []string {
	return []string{
		rec.Name,
		rec.Website,
		string(rec.Category),
		rec.ContactEmail,
		rec.PainPoints,
		rec.SourceURL,
		string(rec.Status),
		strconv.FormatBool(rec.Successful()),
		string(rec.Review),
		rec.StatusDetail,
	}
}

// RunScoped is implemented by exporters that write a file, so concurrent
// runs can each get their own output.
type RunScoped interface {
	ForRun(runID string) Exporter
}

// RunPath inserts runID before the extension of path:
// "out/leads.csv" becomes "out/leads-<runID>.csv".
func RunPath(path, runID string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + runID + ext
}

// ForRun scopes e to runID when it writes files, and returns it unchanged
// otherwise.
func ForRun(e Exporter, runID string) Exporter {
	if s, ok := e.(RunScoped); ok {
		return s.ForRun(runID)
	}
	return e
}

// Multi runs every exporter in order. A failing exporter does not stop the
// rest; the errors are joined.
type Multi []Exporter

func (m Multi) Name() string { return "multi" }

func (m Multi) ForRun(runID string) Exporter {
	scoped := make(Multi, len(m))
	for i, e := range m {
		scoped[i] = ForRun(e, runID)
	}
	return scoped
}

func (m Multi) Export(ctx context.Context, records []model.CompanyRecord) error {
	var errs []error
	for _, e := range m {
		if err := e.Export(ctx, records); err != nil {
			errs = append(errs, eris.Wrapf(err, "export: %s", e.Name()))
		}
	}
	return errors.Join(errs...)
}
