package datarecording

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// runInfo is one property of the recorded run.
type runInfo struct {
	Property string
	Value    string
}

// runRecorder records how the recorded run was started and when it ended.
type runRecorder struct {
	tableName string
	recorder  DataRecorder
	entries   []runInfo
}

func newRunRecorder(recorder DataRecorder) *runRecorder {
	r := &runRecorder{
		tableName: "run_info",
		recorder:  recorder,
		entries:   []runInfo{},
	}

	r.recorder.CreateTable(r.tableName, runInfo{})

	return r
}

// Start logs the current run.
func (r *runRecorder) Start() {
	currentTime := time.Now()
	startTime := currentTime.Format("2006-01-02 15:04:05.000000000")
	timeEntry := runInfo{"Start Time", startTime}
	r.entries = append(r.entries, timeEntry)

	cmd := strings.Join(os.Args, " ")
	cmdEntry := runInfo{"Command", cmd}
	r.entries = append(r.entries, cmdEntry)

	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}

	cwd := filepath.Dir(ex)
	cwdEntry := runInfo{"Working Directory", cwd}
	r.entries = append(r.entries, cwdEntry)
}

// End writes the buffered entries along with the run end time.
func (r *runRecorder) End() {
	for _, entry := range r.entries {
		r.recorder.InsertData(r.tableName, entry)
	}

	endTime := time.Now()
	endValue := endTime.Format("2006-01-02 15:04:05.000000000")
	timeEntry := runInfo{"End Time", endValue}
	r.recorder.InsertData(r.tableName, timeEntry)

	r.entries = nil

	r.recorder.Flush()
}
