package report

import (
	"github.com/turtacn/simheat/pkg/errors"
)

// Layout describes where the fixed-format reports keep their data.
type Layout struct {
	// HeaderLines are discarded before the atom-count line.
	HeaderLines int `mapstructure:"header_lines" yaml:"header_lines" json:"header_lines"`
	// SimilaritySkip lines follow the count line in a similarity report.
	SimilaritySkip int `mapstructure:"similarity_skip" yaml:"similarity_skip" json:"similarity_skip"`
	// PatternSkip lines follow the count line in a pattern report.
	PatternSkip int `mapstructure:"pattern_skip" yaml:"pattern_skip" json:"pattern_skip"`
	// ScoreOffset locates the score token counted from the end of a row (1 = last).
	ScoreOffset int `mapstructure:"score_offset" yaml:"score_offset" json:"score_offset"`
	// MissingMarker as the last token of a row means "no score"; it reads as 0.
	MissingMarker string `mapstructure:"missing_marker" yaml:"missing_marker" json:"missing_marker"`
	// NameStart is the first token of the display name in a pattern row.
	NameStart int `mapstructure:"name_start" yaml:"name_start" json:"name_start"`
	// MaxAtoms is the largest atom count a report may declare.
	MaxAtoms int `mapstructure:"max_atoms" yaml:"max_atoms" json:"max_atoms"`
}

// DefaultMaxAtoms bounds the matrix a report header can request to about
// 32 MB of scores.
const DefaultMaxAtoms = 2048

// DefaultLayout matches the reports written by the analysis tool.
func DefaultLayout() Layout {
	return Layout{
		HeaderLines:    8,
		SimilaritySkip: 1,
		PatternSkip:    3,
		ScoreOffset:    3,
		MissingMarker:  "N/A",
		NameStart:      6,
		MaxAtoms:       DefaultMaxAtoms,
	}
}

// Validate rejects layouts that cannot address a row.
func (l Layout) Validate() error {
	switch {
	case l.HeaderLines < 0, l.SimilaritySkip < 0, l.PatternSkip < 0:
		return errors.New(errors.ErrCodeValidation, "layout line counts must not be negative")
	case l.ScoreOffset < 1:
		return errors.Newf(errors.ErrCodeValidation, "score_offset must be >= 1, got %d", l.ScoreOffset)
	case l.NameStart < 0:
		return errors.Newf(errors.ErrCodeValidation, "name_start must be >= 0, got %d", l.NameStart)
	case l.MissingMarker == "":
		return errors.New(errors.ErrCodeValidation, "missing_marker must not be empty")
	case l.MaxAtoms < 1 || l.MaxAtoms > MaxMatrixSize:
		return errors.Newf(errors.ErrCodeValidation, "max_atoms must be in 1..%d, got %d", MaxMatrixSize, l.MaxAtoms)
	}
	return nil
}

//Personal.AI order the ending
