// Package docgen contains the application services of the document
// generation pipeline: invoice numbering, context assembly, artifact
// persistence and the invoice orchestrator.
package docgen

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/docgen/backend/internal/domain/document"
	"go.uber.org/zap"
)

const sequenceKeyPrefix = "last_invoice_sequence_"

// NumberingError signals that the invoice counter could not be
// advanced. No number is considered issued.
type NumberingError struct {
	Message string
	Cause   error
}

func (e *NumberingError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *NumberingError) Unwrap() error {
	return e.Cause
}

// NumberingService issues gap-free, year-scoped invoice numbers in the
// form INV-YYYY-NNNNN. The per-year counter lives in the settings
// store and is advanced with a compare-and-set loop, so concurrent
// callers each receive a distinct consecutive number.
type NumberingService struct {
	settings document.SettingsStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewNumberingService creates a numbering service using the wall clock
func NewNumberingService(settings document.SettingsStore, logger *zap.Logger) *NumberingService {
	return NewNumberingServiceWithClock(settings, time.Now, logger)
}

// NewNumberingServiceWithClock creates a numbering service with an
// injected clock
func NewNumberingServiceWithClock(settings document.SettingsStore, now func() time.Time, logger *zap.Logger) *NumberingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NumberingService{settings: settings, now: now, logger: logger}
}

// NextInvoiceNumber allocates the next number for the current year.
// The first call of a new year starts its own counter at 1; counters
// of previous years are never touched.
func (s *NumberingService) NextInvoiceNumber(ctx context.Context) (string, error) {
	year := s.now().Year()
	key := fmt.Sprintf("%s%d", sequenceKeyPrefix, year)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", &NumberingError{Message: "invoice numbering cancelled", Cause: err}
		}

		current, exists, err := s.settings.Get(ctx, key)
		if err != nil {
			return "", &NumberingError{Message: "cannot read invoice counter", Cause: err}
		}

		last := 0
		var expected *string
		if exists {
			last, err = strconv.Atoi(current)
			if err != nil {
				return "", &NumberingError{Message: fmt.Sprintf("invoice counter %s holds non-numeric value %q", key, current)}
			}
			expected = &current
		}

		next := last + 1
		ok, err := s.settings.SetIfCAS(ctx, key, expected, strconv.Itoa(next))
		if err != nil {
			return "", &NumberingError{Message: "cannot advance invoice counter", Cause: err}
		}
		if !ok {
			// Lost the race; re-read and try again.
			continue
		}

		number := fmt.Sprintf("INV-%d-%05d", year, next)
		if attempt > 1 {
			s.logger.Debug("invoice number allocated after contention",
				zap.String("number", number),
				zap.Int("attempts", attempt))
		}
		return number, nil
	}
}
