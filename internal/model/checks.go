package model

// Check is a roll-up of one rule across every scanned repository.
// Keep it simple: this is meant to be shown directly in reports.
type Check struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Status  string `json:"status" yaml:"status"` // PASS/WARN/FAIL
	Passed  int    `json:"passed" yaml:"passed"`
	Failed  int    `json:"failed" yaml:"failed"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}
