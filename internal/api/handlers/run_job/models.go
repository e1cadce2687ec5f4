package run_job

// RunJobResponse HTTP response model
type RunJobResponse struct {
	Job        string `json:"job"`
	Items      int    `json:"items"`
	DurationMs int64  `json:"durationMs"`
}
