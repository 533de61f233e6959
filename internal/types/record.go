package types

// Record is one report-bearing row of the dataset, identified by its ordinal
// position in the input table.
type Record struct {
	ID   int
	Text string
}

// ClassificationResult is the outcome of classifying one record.
// Failed marks a result produced by exhausting retries or by an unparsable
// reply; it still carries a usable label so downstream consumers never see an
// unset one.
type ClassificationResult struct {
	Label       Label
	Explanation string
	Count       *int
	Failed      bool
}

// DefaultedResult returns the safe fallback used when classification could not
// produce a trustworthy answer.
func DefaultedResult(explanation string) ClassificationResult {
	return ClassificationResult{
		Label:       LabelUncertain,
		Explanation: explanation,
		Failed:      true,
	}
}
