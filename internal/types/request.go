package types

import "time"

type DataType int

const (
	DataTypeAll DataType = iota
	DataTypeConfig
	DataTypeState
)

func (d DataType) String() string {
	switch d {
	case DataTypeConfig:
		return "config"
	case DataTypeState:
		return "state"
	default:
		return "all"
	}
}

type GetRequest struct {
	Paths    []WirePath
	DataType DataType
}

// PathValue is one encoded result of a Get.
type PathValue struct {
	Path      WirePath
	Value     JSONValue
	Timestamp time.Time
}

// PathFailure records a path skipped during a multi-path request.
type PathFailure struct {
	Path WirePath
	Err  error
}

type GetResponse struct {
	Values []PathValue
	Errors []PathFailure
}

// PathUpdate pairs a wire path with its payload for replace and update.
type PathUpdate struct {
	Path  WirePath
	Value Value
}

type SetRequest struct {
	Deletes  []WirePath
	Replaces []PathUpdate
	Updates  []PathUpdate
}

type OpResult struct {
	Path WirePath
	Kind OpKind
}

type SetResponse struct {
	Results   []OpResult
	Committed []WireUpdate
	Timestamp time.Time
}
