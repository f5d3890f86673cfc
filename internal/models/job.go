package models

import "strings"

// AddressJob represents a single address to be geocoded within a batch run.
// Jobs are immutable once created; Index drives placemark numbering and
// display order, starting from 1.
type AddressJob struct {
	Index   int    // Index is the 1-based position of the job within the batch.
	RawText string // RawText is the trimmed address line as the user entered it.
}

// Match represents the single best geocoder hit for an address.
type Match struct {
	Coordinates Coordinates `json:"coordinates"`  // Coordinates of the resolved address.
	AddressLine string      `json:"address_line"` // AddressLine is the normalized address returned by the provider.
}

// ParseJobs splits raw user input into an ordered list of address jobs.
// Input is split on line breaks, each line is trimmed, and blank lines are
// discarded; the remaining lines are numbered in input order starting from 1.
func ParseJobs(raw string) []AddressJob {
	var jobs []AddressJob
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		jobs = append(jobs, AddressJob{Index: len(jobs) + 1, RawText: line})
	}
	return jobs
}
