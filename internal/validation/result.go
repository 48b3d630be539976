package validation

// Result contains the overall validation result.
type Result struct {
	IsReadable        bool
	IsDimensionsMatch bool
	IsSequential      bool
	IsChronological   bool
	IsCountCorrect    bool

	// Details
	ReadableMessage      string
	DimensionsMessage    string
	SequenceMessage      string
	ChronologicalMessage string
	CountMessage         string
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// IsValid returns true if all validation checks passed.
func (r *Result) IsValid() bool {
	return r.IsReadable &&
		r.IsDimensionsMatch &&
		r.IsSequential &&
		r.IsChronological &&
		r.IsCountCorrect
}

// GetValidationSteps returns all validation steps with results.
func (r *Result) GetValidationSteps() []ValidationStep {
	return []ValidationStep{
		{Name: "Shot images", Passed: r.IsReadable, Details: r.ReadableMessage},
		{Name: "Dimensions", Passed: r.IsDimensionsMatch, Details: r.DimensionsMessage},
		{Name: "Shot ids", Passed: r.IsSequential, Details: r.SequenceMessage},
		{Name: "Timecodes", Passed: r.IsChronological, Details: r.ChronologicalMessage},
		{Name: "Shot count", Passed: r.IsCountCorrect, Details: r.CountMessage},
	}
}

// GetFailures returns descriptions of failed validation checks.
func (r *Result) GetFailures() []string {
	var failures []string
	for _, step := range r.GetValidationSteps() {
		if !step.Passed {
			failures = append(failures, step.Name+": "+step.Details)
		}
	}
	return failures
}
