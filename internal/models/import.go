package models

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// scriptArrayRe extracts the first bracketed array literal from a pasted
// script file, e.g. "export const initialData: Plan[] = [...];"
var scriptArrayRe = regexp.MustCompile(`(?s)=\s*(\[.*\]);`)

// ErrNoPlanArray is returned when a payload contains no recognizable plans
var ErrNoPlanArray = errors.New("no plan array found in payload")

// DecodePlansPayload decodes plans from any of the accepted backup shapes: a
// snapshot envelope, a bare plan array, or a script file whose first
// bracketed array literal is extracted.
func DecodePlansPayload(payload string) ([]*Plan, error) {
	raw := strings.TrimSpace(payload)

	if !strings.HasPrefix(raw, "[") && !strings.HasPrefix(raw, "{") {
		match := scriptArrayRe.FindStringSubmatch(raw)
		if match == nil {
			return nil, ErrNoPlanArray
		}
		raw = match[1]
	}

	if strings.HasPrefix(raw, "{") {
		var snap Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return nil, err
		}
		if snap.Plans == nil {
			return nil, ErrNoPlanArray
		}
		return snap.Plans, nil
	}

	var plans []*Plan
	if err := json.Unmarshal([]byte(raw), &plans); err != nil {
		return nil, err
	}
	return plans, nil
}
