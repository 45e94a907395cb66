package events

import "time"

var IngestionCompletedTopic = "IngestionCompletedEvent"

type IngestionCompleted struct {
	RunID    string
	Added    int
	Skipped  int
	Filtered int
	Duration time.Duration
	Err      error
}
