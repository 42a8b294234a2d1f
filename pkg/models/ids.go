package models

import (
	"strconv"
	"strings"
)

// TriggerNodeID is the fixed identifier of the single trigger node.
const TriggerNodeID = "trigger"

const (
	jobNodePrefix     = "job-"
	stepNodeSeparator = "-step-"
)

// JobNodeID derives a job's node identifier from its job id.
func JobNodeID(jobID string) string {
	return jobNodePrefix + jobID
}

// StepNodeID derives a step's node identifier from its parent job node id and
// its ordinal index within the job.
func StepNodeID(jobNodeID string, index int) string {
	return jobNodeID + stepNodeSeparator + strconv.Itoa(index)
}

// ParseJobNodeID recovers the job id from a job node identifier.
func ParseJobNodeID(nodeID string) (string, bool) {
	if !strings.HasPrefix(nodeID, jobNodePrefix) {
		return "", false
	}

	jobID := strings.TrimPrefix(nodeID, jobNodePrefix)
	if jobID == "" {
		return "", false
	}

	return jobID, true
}

// ParseStepNodeID recovers the parent job node id and the ordinal index from a
// step node identifier. The last "-step-" separator wins, so job ids that
// themselves contain the separator still parse correctly.
func ParseStepNodeID(nodeID string) (string, int, bool) {
	at := strings.LastIndex(nodeID, stepNodeSeparator)
	if at <= 0 {
		return "", 0, false
	}

	index, err := strconv.Atoi(nodeID[at+len(stepNodeSeparator):])
	if err != nil || index < 0 {
		return "", 0, false
	}

	return nodeID[:at], index, true
}
