package driver

import (
	"github.com/tethersim/tether/datarecording"
	"github.com/tethersim/tether/sim"
)

// SystemCommitEntry is one recorded system commit.
type SystemCommitEntry struct {
	System string
	Time   float64
}

// CommitLogger is a hook that records every system commit through a
// DataRecorder.
type CommitLogger struct {
	recorder  datarecording.DataRecorder
	tableName string
}

// NewCommitLogger returns a CommitLogger that writes into the given recorder.
func NewCommitLogger(recorder datarecording.DataRecorder) *CommitLogger {
	l := &CommitLogger{
		recorder:  recorder,
		tableName: "system_commits",
	}

	l.recorder.CreateTable(l.tableName, SystemCommitEntry{})

	return l
}

// Func records the commit of a system state and ignores all other hook
// positions.
func (l *CommitLogger) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosSystemCommit {
		return
	}

	sys := ctx.Item.(System)
	now := ctx.Detail.(sim.VTimeInSec)

	l.recorder.InsertData(l.tableName, SystemCommitEntry{
		System: sys.Name(),
		Time:   float64(now),
	})
}
