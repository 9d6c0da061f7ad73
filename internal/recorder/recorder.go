package recorder

import "github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"

// Recorder persists cycle history for audit and diagnostics.
type Recorder interface {
	RecordCycle(report *model.CycleReport) error
	LatestCycle() (*model.CycleReport, error)
	Close() error
}
