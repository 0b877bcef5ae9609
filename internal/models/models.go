package models

import "time"

// Course is one entry in the course catalog.
type Course struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Country   string    `json:"country"` // ISO-3166 alpha-2, empty when unknown
	Region    string    `json:"region"`  // state, county or province as published in the dataset
	Source    string    `json:"source"`  // dataset file the course was imported from
	UpdatedAt time.Time `json:"updatedAt"`
}

// CacheEntry is a raw upstream forecast payload held for a fixed TTL.
type CacheEntry struct {
	Key       string
	Body      []byte
	FetchedAt time.Time
	ExpiresAt time.Time
}

// Fresh reports whether the entry may still be served at now.
func (e CacheEntry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// IngestRun records one upstream fetch or warm cycle.
type IngestRun struct {
	ID         int64
	Source     string // "openweather", "warm", "courses"
	StartedAt  time.Time
	FinishedAt time.Time
	Success    bool
	Records    int
	Error      string
}
