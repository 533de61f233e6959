package parsing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/report-classifier/internal/types"
)

var (
	// labelPattern matches a standalone label digit.
	labelPattern = regexp.MustCompile(`\b[012]\b`)
	// anchorPattern marks where the explanation ends and lesion-count talk begins.
	anchorPattern = regexp.MustCompile(`lesion|metastasis|count|number`)
	// countPattern matches an integer immediately preceding the word "lesion".
	countPattern = regexp.MustCompile(`\b(\d+)\s+lesion`)
)

// Findings is the structured content of a multi-field reply. Only the label
// is mandatory; a missing explanation or count is not an error.
type Findings struct {
	Label       types.Label
	Explanation string
	Count       *int
}

// ParseFindings extracts a label, explanation, and lesion count from a
// multi-field task reply.
//
// The label is the first standalone 0/1/2 digit. The explanation is the text
// between the label and the first anchor word (lesion, metastasis, count,
// number); when no anchor follows the label, the entire remainder after the
// label token is taken. The count is the integer immediately before the word
// "lesion", kept only when the label indicates a finding is present.
func ParseFindings(reply string) (Findings, error) {
	loc := labelPattern.FindStringIndex(reply)
	if loc == nil {
		return Findings{}, &NoLabelError{Reply: reply}
	}

	label, err := types.ParseLabelToken(reply[loc[0]:loc[1]])
	if err != nil {
		return Findings{}, &NoLabelError{Reply: reply}
	}

	f := Findings{Label: label}

	remainder := reply[loc[1]:]
	if anchor := anchorPattern.FindStringIndex(remainder); anchor != nil {
		f.Explanation = strings.TrimSpace(remainder[:anchor[0]])
	} else {
		f.Explanation = strings.TrimSpace(remainder)
	}

	if label == types.LabelAbnormal {
		if m := countPattern.FindStringSubmatch(reply); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				f.Count = &n
			}
		}
	}

	return f, nil
}
