// Package ranking holds the relevance signals used to order assessments and
// the weights that combine them.
//
// Basic Usage:
//
//	// Load calibration (typically at startup)
//	weights, err := ranking.LoadCalibration("configs/ranking.calibration.json")
//	if err != nil {
//		slog.Warn("using default weights", "error", err)
//	}
//
//	scores := ranking.Scores{
//		Similarity:        index.Similarity(i),
//		KeywordCoverage:   ranking.KeywordCoverage(keyTerms, doc),
//		CategoryRelevance: ranking.CategoryRelevance(keyTerms, record.TestType, nil),
//	}
//	score := ranking.CompositeScore(scores, weights)
//
// Signals:
//
// KeywordCoverage and CategoryRelevance return values in [0, 1]. The TF-IDF
// similarity is unbounded, so composite scores are only comparable within one
// request.
//
// Calibration:
//
// Weights are fixed for the lifetime of the process. A JSON calibration file
// read at startup may override any of them; keys left out keep their default.
// See configs/ranking.calibration.json for the default configuration.
package ranking
