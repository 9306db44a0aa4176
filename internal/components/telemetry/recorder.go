package telemetry

import (
	"fmt"
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelWarning
	LevelBroken
	LevelCount
)

type Entry struct {
	Level  Level
	ID     string
	Params []any
}

// Recorder is an API that keeps every report in memory, it exists so tests
// can assert on what a component reported.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add(Entry{Level: LevelBroken, ID: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add(Entry{Level: LevelWarning, ID: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add(Entry{Level: LevelDebug, ID: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.add(Entry{Level: LevelCount, ID: id, Params: []any{count}})
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many entries of the given level have an id containing substr.
func (r *Recorder) Count(level Level, substr string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level && strings.Contains(e.ID, substr) {
			n++
		}
	}
	return n
}

func (e Entry) String() string {
	return fmt.Sprintf("[%d] %s %v", e.Level, e.ID, e.Params)
}
