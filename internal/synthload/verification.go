package synthload

import (
	"context"
	"fmt"

	"github.com/vikashgd/liverTracker-sub000/pkg/logger"
)

// expectedScoreTypes every patient read-back must include.
var expectedScoreTypes = []string{"MELD", "MELD_NA", "CHILD_PUGH"}

// verifyResults reads each patient's series and scores back and checks
// the pipeline's observable invariants: every submitted patient exists,
// series points are unique per date, and all three score types come
// back (computed or explicitly missing parameters, never absent).
func verifyResults(ctx context.Context, config *Config, docs []Document, stats *Stats) error {
	client := newHTTPClient(config.Timeout)

	patients := make(map[string]struct{})
	for _, d := range docs {
		patients[d.PatientID] = struct{}{}
	}

	logger.Get().Info(ctx, "verifying read-back", logger.Int("patients", len(patients)))

	for patientID := range patients {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		series, err := fetchSeries(client, config.BaseURL, patientID)
		if err != nil {
			return fmt.Errorf("patient %s: %w", patientID, err)
		}
		if len(series) == 0 {
			return fmt.Errorf("patient %s: no series after ingestion", patientID)
		}
		for _, s := range series {
			seen := make(map[string]struct{}, len(s.Points))
			for _, p := range s.Points {
				if _, dup := seen[p.Date]; dup {
					return fmt.Errorf("patient %s: metric %s has duplicate date %s", patientID, s.Metric, p.Date)
				}
				seen[p.Date] = struct{}{}
			}
		}
		stats.SeriesRetrieved += len(series)

		scores, err := fetchScores(client, config.BaseURL, patientID)
		if err != nil {
			return fmt.Errorf("patient %s: %w", patientID, err)
		}
		byType := make(map[string]ScoreResponse, len(scores))
		for _, sc := range scores {
			byType[sc.Type] = sc
		}
		for _, want := range expectedScoreTypes {
			sc, ok := byType[want]
			if !ok {
				return fmt.Errorf("patient %s: score %s missing from response", patientID, want)
			}
			switch {
			case sc.Value != nil:
				stats.ScoresComputed++
			case len(sc.MissingParameters) > 0:
				stats.ScoresMissing++
			default:
				return fmt.Errorf("patient %s: score %s has neither value nor missing parameters", patientID, want)
			}
		}

		stats.PatientsVerified++
	}

	logger.Get().Info(ctx, "verification passed",
		logger.Int("patientsVerified", stats.PatientsVerified),
		logger.Int("scoresComputed", stats.ScoresComputed),
		logger.Int("scoresMissing", stats.ScoresMissing))
	return nil
}
