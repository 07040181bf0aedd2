package utils

import (
	"errors"
	"strings"
	"time"

	"bdayinvite/src-server/birthday"
	"bdayinvite/src-server/store"
)

// Outcome of one birthday operation, counted by the metric package.
type Operation struct {
	Name   string
	Result string
}

// Latencies are in microseconds. Every send drops the sample when the
// collector is behind or not running, so callers never block on metrics.
type Metric struct {
	DatabaseRead       chan float64
	DatabaseWrite      chan float64
	DiscordSendMessage chan float64
	Operation          chan Operation
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:       make(chan float64, 64),
		DatabaseWrite:      make(chan float64, 64),
		DiscordSendMessage: make(chan float64, 64),
		Operation:          make(chan Operation, 64),
	}
}

func trySend[T any](ch chan T, value T) {
	select {
	case ch <- value:
	default:
	}
}

func (m *Metric) RecordDatabaseRead(d time.Duration) {
	trySend(m.DatabaseRead, float64(d.Microseconds()))
}

func (m *Metric) RecordDatabaseWrite(d time.Duration) {
	trySend(m.DatabaseWrite, float64(d.Microseconds()))
}

func (m *Metric) RecordDiscordSend(startTimer time.Time) {
	trySend(m.DiscordSendMessage, float64(time.Since(startTimer).Microseconds()))
}

// RecordOperation labels err by its domain code, "ok" for nil and "error"
// for backend faults.
func (m *Metric) RecordOperation(name string, err error) {
	trySend(m.Operation, Operation{Name: name, Result: OperationResult(err)})
}

func OperationResult(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, store.ErrEventExists) {
		return "event_exists"
	}
	if code := birthday.CodeOf(err); code != "" {
		return strings.ToLower(string(code))
	}
	return "error"
}
