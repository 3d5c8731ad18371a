package monitor

import "time"

type Status struct {
	PostgreSQL  bool      `json:"postgresql"`
	Redis       bool      `json:"redis"`
	Markers     bool      `json:"markers"`
	MarkerCount int       `json:"marker_count"`
	LastCheck   time.Time `json:"last_check"`
}
