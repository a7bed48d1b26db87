package translation

import (
	"context"
	"fmt"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/record"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/textutil"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/worker"
)

// Service splits records into batches and runs them through a Translator
// with bounded concurrency. Failures never abort the run; they are
// collected per record.
type Service struct {
	translator  Translator
	batchSize   int
	concurrency int
}

// NewService creates a Service around the given translator.
func NewService(t Translator, batchSize, concurrency int) *Service {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Service{translator: t, batchSize: batchSize, concurrency: concurrency}
}

// TranslateRecords assigns translations and resource names to the given
// records in place. onBatchDone, if non-nil, is called once per finished
// batch (from worker goroutines) so callers can drive a progress display.
// Returns the number of records updated and the per-record failure
// messages.
func (s *Service) TranslateRecords(ctx context.Context, records []*record.LiteralRecord, onBatchDone func(size int)) (int, []string) {
	batches := worker.Batch(records, s.batchSize)

	type outcome struct {
		applied  int
		failures []string
	}

	pool := worker.NewPool[[]*record.LiteralRecord, outcome](s.concurrency,
		func(ctx context.Context, batch []*record.LiteralRecord) (outcome, error) {
			texts := make([]string, len(batch))
			for i, r := range batch {
				texts[i] = r.Text
			}

			results, err := s.translator.TranslateBatch(ctx, texts)
			if err != nil {
				failures := make([]string, len(batch))
				for i, r := range batch {
					failures[i] = fmt.Sprintf("%s: %v", textutil.Truncate(r.Text, 30), err)
				}
				if onBatchDone != nil {
					onBatchDone(len(batch))
				}
				return outcome{failures: failures}, nil
			}

			applied, failures := ApplyResults(batch, results)
			if onBatchDone != nil {
				onBatchDone(len(batch))
			}
			return outcome{applied: applied, failures: failures}, nil
		},
	)

	var applied int
	var failures []string
	for _, oc := range pool.Run(ctx, batches) {
		applied += oc.Result.applied
		failures = append(failures, oc.Result.failures...)
	}
	return applied, failures
}
