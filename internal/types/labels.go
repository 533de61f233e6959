// Package types defines the core domain types for report classification.
package types

import (
	"fmt"
	"strconv"
)

// Label is the discrete classification outcome for a report.
// The numeric values match the tokens the model is instructed to reply with.
type Label int

// Label values shared by all tasks. The single-label chest task reads these as
// normal/abnormal/uncertain; the liver task reads them as no-finding/finding/uncertain.
const (
	LabelNormal    Label = 0
	LabelAbnormal  Label = 1
	LabelUncertain Label = 2
)

// ValidLabels lists the accepted label tokens in fallback scan priority order.
var ValidLabels = []Label{LabelNormal, LabelAbnormal, LabelUncertain}

// Token returns the single-digit wire token for the label.
func (l Label) Token() string {
	return strconv.Itoa(int(l))
}

// ParseLabelToken converts a bare digit token into a Label.
func ParseLabelToken(s string) (Label, error) {
	switch s {
	case "0":
		return LabelNormal, nil
	case "1":
		return LabelAbnormal, nil
	case "2":
		return LabelUncertain, nil
	}
	return 0, fmt.Errorf("invalid label token %q", s)
}
