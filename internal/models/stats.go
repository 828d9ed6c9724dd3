package models

// Stats are the site-wide counters shown on the landing page
type Stats struct {
	Questions int64 `json:"questions"`
	Answers   int64 `json:"answers"`
	Users     int64 `json:"users"`
	Tags      int64 `json:"tags"`
}
