// Package query runs the detection and dispatch pipeline for user queries
// and publishes the aggregated result of the latest one.
package query

import (
	"time"

	"horse.fit/easydict/internal/aggregate"
	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/langdetect"
)

// Context is one user query. It is never modified; a new query or a
// target override creates a new Context with a higher Seq.
type Context struct {
	Seq       uint64    `json:"seq"`
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is the published state of the current query.
type Snapshot struct {
	Seq   uint64  `json:"seq"`
	Query Context `json:"query"`
	// Target is the language results are requested in. It differs from
	// Query.Target when the confirmed source equals the requested target.
	Target           string                `json:"target,omitempty"`
	DetectionPending bool                  `json:"detection_pending"`
	Confirmed        *langdetect.Confirmed `json:"confirmed,omitempty"`
	Sections         []aggregate.Section   `json:"sections"`
	Notices          []aggregate.Notice    `json:"notices"`
	Pending          []backend.ID          `json:"pending"`
	Complete         bool                  `json:"complete"`
}

// secondaryTarget picks the target used when source and target coincide.
func secondaryTarget(source, secondary string) string {
	if source == secondary {
		if source == "en" {
			return "zh-Hans"
		}
		return "en"
	}
	return secondary
}
