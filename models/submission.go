package models

import (
	"encoding/json"
	"fmt"
)

// IssueSubmission is a candidate issue as received at the public intake
// boundary. Status is accepted on the wire but never honored.
type IssueSubmission struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Category     string       `json:"category"`
	Priority     string       `json:"priority"`
	Status       string       `json:"status"`
	Location     Location     `json:"location"`
	ReporterInfo ReporterInfo `json:"reporterInfo"`
}

// UnmarshalJSON accepts coordinates either as an object or as a JSON
// string holding that object, which is how multipart clients send them.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	type plain Coordinates
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid coordinates: %w", err)
	}
	*c = Coordinates(p)
	return nil
}
