package constants

// JobStatus is the canonical status for rows in extraction_job.
type JobStatus string

// Stable values (store these exact strings in the DB).
const (
	JobStatusRunning   JobStatus = "RUNNING"   // request in progress
	JobStatusSucceeded JobStatus = "SUCCEEDED" // extraction produced a result
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
)
