package utils

import (
	"fmt"
	"strings"

	"github.com/rs/xid"
)

// GenerateID generates a globally unique, sortable ID
func GenerateID() string {
	return xid.New().String()
}

// GenerateRunID generates a run ID. IDs sort by creation time.
func GenerateRunID() string {
	return "run-" + xid.New().String()
}

// PatientID builds the identity of a simulated patient from the day it was
// scheduled, its cohort tag and its arrival sequence within that day.
func PatientID(day, cohort, seq int) string {
	return fmt.Sprintf("Day%d_Cohort%d_Pat%d", day, cohort, seq)
}

// ValidateRunID rejects IDs that cannot be used in URL paths.
func ValidateRunID(id string) error {
	if id == "" {
		return fmt.Errorf("run id cannot be empty")
	}
	if strings.ContainsAny(id, "/:?# ") {
		return fmt.Errorf("run id %q cannot contain '/', ':', '?', '#' or spaces", id)
	}
	return nil
}
