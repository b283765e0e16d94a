package model

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// UIState is what the interface currently displays. Results is set only when
// Status is ready and Error only when Status is error.
type UIState struct {
	Status   Status     `json:"status"`
	Results  *ResultSet `json:"results,omitempty"`
	Error    string     `json:"error,omitempty"`
	Sequence uint64     `json:"sequence"`
}

func Idle() UIState {
	return UIState{Status: StatusIdle}
}

func Loading(seq uint64) UIState {
	return UIState{Status: StatusLoading, Sequence: seq}
}

func Ready(seq uint64, results *ResultSet) UIState {
	return UIState{Status: StatusReady, Results: results, Sequence: seq}
}

func Failed(seq uint64, message string) UIState {
	return UIState{Status: StatusError, Error: message, Sequence: seq}
}

// IsLoading reports whether a search is in flight.
func (s UIState) IsLoading() bool {
	return s.Status == StatusLoading
}
