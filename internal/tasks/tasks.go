package tasks

import "encoding/json"

// Task type constants.
const (
	// TypeAutoRoomSweep is the periodic sweep that tears down idle auto
	// rooms whose members all left without a clean departure event.
	TypeAutoRoomSweep = "autoroom:sweep"
)

// AutoRoomSweepPayload parameterizes one sweep run.
type AutoRoomSweepPayload struct {
	// IdleSeconds is the minimum room age before the sweep considers it.
	IdleSeconds int `json:"idle_seconds"`
	// BatchLimit caps how many rooms one sweep inspects.
	BatchLimit int `json:"batch_limit"`
}

// NewAutoRoomSweepTask builds the payload for a sweep task.
func NewAutoRoomSweepTask(idleSeconds, batchLimit int) ([]byte, error) {
	return json.Marshal(AutoRoomSweepPayload{
		IdleSeconds: idleSeconds,
		BatchLimit:  batchLimit,
	})
}
