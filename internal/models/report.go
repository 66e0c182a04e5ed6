package models

// QualityReport is an immutable snapshot of the quality metrics computed
// for a single variant table. It is constructed once by the quality
// checker and never mutated afterwards.
//
// QualityScore is a pointer so a report deserialized from JSON without
// the field is detectably incomplete before publishing.
type QualityReport struct {
	Timestamp                        string         `json:"timestamp"`
	RowCount                         int            `json:"row_count"`
	ColumnCount                      int            `json:"column_count"`
	NullPercentageAvg                float64        `json:"null_percentage_avg"`
	DuplicateCount                   int            `json:"duplicate_count"`
	ConflictingCount                 int64          `json:"conflicting_count"`
	FourStarPercentage               float64        `json:"four_star_percentage"`
	ClinicalSignificanceDistribution map[string]int `json:"clinical_significance_distribution"`
	ReviewStatusDistribution         map[string]int `json:"review_status_distribution"`
	QualityScore                     *float64       `json:"quality_score,omitempty"`
}

// Score returns the quality score, or 0 when the report carries none.
func (r *QualityReport) Score() float64 {
	if r == nil || r.QualityScore == nil {
		return 0
	}
	return *r.QualityScore
}
