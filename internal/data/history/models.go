package history

import "time"

// Snapshot is one recorded project analysis run.
type Snapshot struct {
	ProjectKey     string    `json:"project_key"`
	RunID          string    `json:"run_id"`
	SchemaVersion  int       `json:"schema_version"`
	Timestamp      time.Time `json:"timestamp"`
	FileCount      int       `json:"file_count"`
	FunctionCount  int       `json:"function_count"`
	CallCount      int       `json:"call_count"`
	CrossFileCount int       `json:"cross_file_count"`
	DeadCount      int       `json:"dead_count"`
}

// TrendPoint is the delta between two consecutive snapshots.
type TrendPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	FunctionCount  int       `json:"function_count"`
	DeadCount      int       `json:"dead_count"`
	FunctionsDelta int       `json:"functions_delta"`
	DeadDelta      int       `json:"dead_delta"`
}

// Trend pairs each snapshot after the first with the change since its
// predecessor. Fewer than two snapshots yields an empty trend.
func Trend(snapshots []Snapshot) []TrendPoint {
	if len(snapshots) < 2 {
		return []TrendPoint{}
	}
	points := make([]TrendPoint, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		prev, cur := snapshots[i-1], snapshots[i]
		points = append(points, TrendPoint{
			Timestamp:      cur.Timestamp,
			FunctionCount:  cur.FunctionCount,
			DeadCount:      cur.DeadCount,
			FunctionsDelta: cur.FunctionCount - prev.FunctionCount,
			DeadDelta:      cur.DeadCount - prev.DeadCount,
		})
	}
	return points
}
