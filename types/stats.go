package types

// Stats holds exact row counts of both tables.
type Stats struct {
	TotalRegistrations int64  `json:"totalRegistrations"`
	TotalFeedback      int64  `json:"totalFeedback"`
	Timestamp          string `json:"timestamp"`
}
