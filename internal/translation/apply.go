package translation

import (
	"fmt"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/record"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/textutil"
)

// ApplyResults copies batch results onto their records by position. A
// missing or empty result leaves that record unassigned and is reported as
// a per-item failure message; the rest of the batch is unaffected. Records
// that got a translation but no usable resource name fall back to a name
// derived from the text itself.
func ApplyResults(records []*record.LiteralRecord, results []Result) (applied int, failures []string) {
	for i, r := range records {
		if i >= len(results) {
			failures = append(failures, fmt.Sprintf("%s: no result at index %d", textutil.Truncate(r.Text, 30), i))
			continue
		}
		res := results[i]
		if res.Translation == "" {
			failures = append(failures, fmt.Sprintf("%s: empty translation", textutil.Truncate(r.Text, 30)))
			continue
		}

		r.Translation = res.Translation
		if res.ResourceName != "" {
			r.ResourceName = res.ResourceName
		} else {
			r.ResourceName = textutil.ResourceName(r.Text)
		}
		if len(res.PlaceholderArgs) > 0 {
			r.PlaceholderArgs = res.PlaceholderArgs
		}
		applied++
	}
	return applied, failures
}
