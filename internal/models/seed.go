package models

import (
	_ "embed"
	"encoding/json"
)

//go:embed seed.json
var seedJSON []byte

// WelcomeTaskID identifies the onboarding task in the seed dataset. The
// store retargets it to the current "tomorrow" on first load so a fresh
// install shows something immediately.
const WelcomeTaskID = "welcome-task-1"

// SeedSnapshot returns a fresh copy of the built-in seed dataset, already
// migrated to the current schema. It is the fallback when persisted state is
// missing or unreadable.
func SeedSnapshot() *Snapshot {
	var plans []*Plan
	if err := json.Unmarshal(seedJSON, &plans); err != nil {
		// The seed is embedded and validated by tests; an unmarshal failure
		// here means a broken build, not a runtime condition.
		panic("models: embedded seed dataset is invalid: " + err.Error())
	}
	return Migrate(plans)
}
