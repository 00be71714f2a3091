package export

import "time"

// Record is an archived export artifact.
type Record struct {
	ID          string
	DocumentID  string
	HTML        string
	Fingerprint string // hex blake2b-256 of HTML
	Bytes       int
	Roots       int
	Modules     int
	ElsePolicy  ElsePolicy

	MalformedColors []string
	Skipped         []string

	CreatedAt time.Time
}
