package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"bookreview/internal/book"
	"bookreview/internal/platform/apperr"
)

type Importer interface {
	Import(ctx context.Context, isbn string) (book.Book, error)
}

type Service struct {
	importer Importer
	log      logrus.FieldLogger
}

func NewService(importer Importer, log logrus.FieldLogger) *Service {
	return &Service{importer: importer, log: log}
}

// Run imports each ISBN in order. Duplicates within the batch are dropped,
// books already in the catalog are reported as skipped, and a failure on one
// ISBN does not stop the rest. Only cancellation aborts the run.
func (s *Service) Run(ctx context.Context, isbns []string) (Report, error) {
	if len(isbns) == 0 {
		return Report{}, apperr.InvalidInput("at least one isbn is required")
	}
	if len(isbns) > MaxBatchSize {
		return Report{}, apperr.InvalidInput(fmt.Sprintf("at most %d isbns per batch", MaxBatchSize))
	}

	seen := make(map[string]bool, len(isbns))
	report := Report{Items: make([]Item, 0, len(isbns))}
	for _, isbn := range isbns {
		if seen[isbn] {
			continue
		}
		seen[isbn] = true
		report.Requested++

		if err := ctx.Err(); err != nil {
			return report, err
		}

		b, err := s.importer.Import(ctx, isbn)
		switch {
		case err == nil:
			report.add(Item{ISBN: isbn, Status: StatusImported, BookID: b.ID})
		case errors.Is(err, context.Canceled):
			return report, err
		case errors.Is(err, apperr.ErrConflict):
			report.add(Item{ISBN: isbn, Status: StatusSkipped})
		case errors.Is(err, apperr.ErrNotFound):
			report.add(Item{ISBN: isbn, Status: StatusNotFound})
		default:
			s.log.WithError(err).WithField("isbn", isbn).Warn("isbn import failed")
			report.add(Item{ISBN: isbn, Status: StatusFailed, Error: apperr.Message(err)})
		}
	}

	s.log.WithFields(logrus.Fields{
		"requested": report.Requested,
		"imported":  report.Imported,
		"skipped":   report.Skipped,
		"not_found": report.NotFound,
		"failed":    report.Failed,
	}).Info("isbn batch imported")
	return report, nil
}
