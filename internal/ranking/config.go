package ranking

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrNegativeWeight is returned for a calibration that sets a weight below zero.
var ErrNegativeWeight = errors.New("ranking weights must not be negative")

// WeightOverrides is the weights block of a calibration file. Absent keys keep
// their default; an explicit 0 switches a signal off.
type WeightOverrides struct {
	Similarity        *float64 `json:"similarity,omitempty"`
	KeywordCoverage   *float64 `json:"keyword_coverage,omitempty"`
	CategoryRelevance *float64 `json:"category_relevance,omitempty"`
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string          `json:"version"`
	Weights WeightOverrides `json:"weights"`
}

// LoadCalibration reads weight overrides from a JSON file and merges them over
// DefaultWeights. An empty path returns the defaults. On any error the defaults
// are returned together with the error, so callers may log and carry on.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	if err := merged.Validate(); err != nil {
		slog.Warn("invalid calibration file, using defaults",
			"path", filePath,
			"error", err)
		return defaults, err
	}
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration applies the overrides that are set to a copy of base.
func MergeCalibration(base *Weights, override *WeightOverrides) *Weights {
	if base == nil {
		base = DefaultWeights()
	}
	result := *base
	if override == nil {
		return &result
	}

	if override.Similarity != nil {
		result.Similarity = *override.Similarity
	}
	if override.KeywordCoverage != nil {
		result.KeywordCoverage = *override.KeywordCoverage
	}
	if override.CategoryRelevance != nil {
		result.CategoryRelevance = *override.CategoryRelevance
	}
	return &result
}

// Validate rejects negative weights.
func (w *Weights) Validate() error {
	if w.Similarity < 0 || w.KeywordCoverage < 0 || w.CategoryRelevance < 0 {
		return fmt.Errorf("%w: similarity=%.2f keyword_coverage=%.2f category_relevance=%.2f",
			ErrNegativeWeight, w.Similarity, w.KeywordCoverage, w.CategoryRelevance)
	}
	return nil
}

func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	if loaded.Similarity != defaults.Similarity {
		overrides = append(overrides, fmt.Sprintf("similarity: %.2f -> %.2f",
			defaults.Similarity, loaded.Similarity))
	}
	if loaded.KeywordCoverage != defaults.KeywordCoverage {
		overrides = append(overrides, fmt.Sprintf("keyword_coverage: %.2f -> %.2f",
			defaults.KeywordCoverage, loaded.KeywordCoverage))
	}
	if loaded.CategoryRelevance != defaults.CategoryRelevance {
		overrides = append(overrides, fmt.Sprintf("category_relevance: %.2f -> %.2f",
			defaults.CategoryRelevance, loaded.CategoryRelevance))
	}

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using all defaults)")
	}
}
