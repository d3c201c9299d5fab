package models

// Persisted snapshot schema versions.
//
// Version 1 is the browser-era format: a bare JSON array of plans in which
// category may be absent. Version 2 wraps the array in a Snapshot envelope
// and guarantees every record carries a known category.
const (
	SchemaVersionLegacy  = 1
	SchemaVersionCurrent = 2
)

// Snapshot is the persisted form of the whole plan collection
type Snapshot struct {
	SchemaVersion int     `json:"schemaVersion"`
	Plans         []*Plan `json:"plans"`
}

// Migrate normalizes raw persisted records to the current schema and returns
// a version-2 snapshot. It fills defaults for every optional-by-history
// field: absent or unknown categories become personal, absent priorities
// become medium. The input slice is not modified.
func Migrate(plans []*Plan) *Snapshot {
	migrated := make([]*Plan, 0, len(plans))
	for _, p := range plans {
		if p == nil {
			continue
		}
		cp := p.Clone()
		if !ValidCategory(cp.Category) {
			cp.Category = DefaultCategory
		}
		if !ValidPriority(cp.Priority) {
			cp.Priority = DefaultPriority
		}
		migrated = append(migrated, cp)
	}
	return &Snapshot{
		SchemaVersion: SchemaVersionCurrent,
		Plans:         migrated,
	}
}
