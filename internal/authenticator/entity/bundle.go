package entity

// BundleVersion is the only backup bundle version this build reads and writes.
const BundleVersion = 1

// Bundle is the export/import artifact.
type Bundle struct {
	Version    int       `json:"version"`
	ExportedAt int64     `json:"exportedAt"`
	Accounts   []Account `json:"accounts"`
}
