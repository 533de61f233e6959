// Package parsing interprets free-text model replies into structured
// classification results. The model is instructed to answer with a bare digit,
// but it frequently wraps the answer in prose, so parsing layers a substring
// fallback behind the strict match.
//
// The fallback checks for the tokens "0", "1", "2" in that fixed priority
// order, accepting the first one present anywhere in the reply. A reply such
// as "I think it's 1 or 0" therefore resolves to 0 even though 1 appears
// first; a reply mentioning "category 2" after a genuine "1" answer resolves
// to 1. This is a known false-positive source, kept deliberately: the
// digits-in-priority-order scan is the established contract and downstream
// datasets were labeled under it.
package parsing

import (
	"strings"

	"github.com/jonathan/report-classifier/internal/types"
)

// ParseLabel extracts a classification label from a single-task reply.
//
// A reply whose trimmed text is exactly one of the valid tokens is accepted
// directly. Otherwise each valid token is checked for substring presence in
// priority order 0, 1, 2 and the first hit wins. A reply with no token at all
// yields a *NoLabelError.
func ParseLabel(reply string) (types.Label, error) {
	trimmed := strings.TrimSpace(reply)

	if label, err := types.ParseLabelToken(trimmed); err == nil {
		return label, nil
	}

	for _, label := range types.ValidLabels {
		if strings.Contains(trimmed, label.Token()) {
			return label, nil
		}
	}

	return 0, &NoLabelError{Reply: reply}
}
