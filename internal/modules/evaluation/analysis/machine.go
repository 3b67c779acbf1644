package analysis

import (
	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
)

// callMachine tracks one AI sub-call through Attempting(n) to Succeeded or FallenBack.
type callMachine struct {
	maxAttempts int
	attempt     int
	state       evaluation.CallState
	lastErr     error
}

func newCallMachine(maxAttempts int) *callMachine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &callMachine{maxAttempts: maxAttempts, state: evaluation.CallAttempting}
}

func (m *callMachine) attempting() bool { return m.state == evaluation.CallAttempting }

// begin starts the next attempt and returns its 1-based number.
func (m *callMachine) begin() int {
	m.attempt++
	return m.attempt
}

func (m *callMachine) succeed() {
	if !m.attempting() {
		return
	}
	m.state = evaluation.CallSucceeded
	m.lastErr = nil
}

// fail records a failed attempt. Permanent errors and the last allowed attempt
// both end in FallenBack.
func (m *callMachine) fail(err error, transient bool) {
	if !m.attempting() {
		return
	}
	m.lastErr = err
	if !transient || m.attempt >= m.maxAttempts {
		m.state = evaluation.CallFellBack
	}
}

func (m *callMachine) abort(err error) {
	if !m.attempting() {
		return
	}
	m.lastErr = err
	m.state = evaluation.CallFellBack
}

func (m *callMachine) trace() evaluation.CallTrace {
	t := evaluation.CallTrace{Attempts: m.attempt, State: m.state}
	if m.lastErr != nil {
		t.LastError = truncate(m.lastErr.Error(), 500)
	}
	return t
}
