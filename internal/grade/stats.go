package grade

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"studentportal/internal/shared"
)

// ComputeStats summarizes the graded portion of a course's records. Records
// without a derived percentage (marks not entered, or incomplete) count only
// in the letter histogram.
func ComputeStats(courseID string, records []shared.GradeRecord) (*shared.CourseGradeStats, error) {
	result := &shared.CourseGradeStats{
		CourseID: courseID,
		ByLetter: make(map[string]int),
	}

	var percentages stats.Float64Data
	for _, rec := range records {
		if rec.LetterGrade != "" {
			result.ByLetter[rec.LetterGrade]++
		}
		if rec.Percentage != nil {
			percentages = append(percentages, *rec.Percentage)
		}
	}

	result.Count = len(percentages)
	if result.Count == 0 {
		return result, nil
	}

	var err error
	if result.Mean, err = percentages.Mean(); err != nil {
		return nil, fmt.Errorf("computing mean: %w", err)
	}
	if result.Median, err = percentages.Median(); err != nil {
		return nil, fmt.Errorf("computing median: %w", err)
	}
	if result.StdDev, err = percentages.StandardDeviation(); err != nil {
		return nil, fmt.Errorf("computing std dev: %w", err)
	}
	if result.Min, err = percentages.Min(); err != nil {
		return nil, fmt.Errorf("computing min: %w", err)
	}
	if result.Max, err = percentages.Max(); err != nil {
		return nil, fmt.Errorf("computing max: %w", err)
	}

	return result, nil
}
