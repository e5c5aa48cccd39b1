package types

import "encoding/json"

// MirrorOutcome classifies a mirror lookup
type MirrorOutcome string

const (
	MirrorFound    MirrorOutcome = "found"
	MirrorNotFound MirrorOutcome = "not_found"
	MirrorFailed   MirrorOutcome = "failed"
)

// MirrorResult is the typed outcome of a single mirror read.
// Data is set only when Outcome is MirrorFound; Err only when it is MirrorFailed.
type MirrorResult struct {
	Outcome MirrorOutcome
	URL     string
	Data    json.RawMessage
	Err     error
}

// Found reports whether the lookup returned a usable payload
func (r *MirrorResult) Found() bool {
	return r != nil && r.Outcome == MirrorFound
}

// DataOrNil degrades any non-found outcome to a JSON null payload
func (r *MirrorResult) DataOrNil() json.RawMessage {
	if !r.Found() {
		return json.RawMessage("null")
	}
	return r.Data
}
