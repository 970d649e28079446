package report

// Severity classifies a single migration event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Stage identifies which pipeline stage produced an event.
type Stage string

const (
	StageManifest  Stage = "manifest"
	StageParse     Stage = "parse"
	StageInventory Stage = "inventory"
	StageTransform Stage = "transform"
	StageVerify    Stage = "verify"
	StageExport    Stage = "export"
)

// Status is the terminal migration status.
type Status string

const (
	StatusSuccess             Status = "success"
	StatusSuccessWithWarnings Status = "success_with_warnings"
	StatusFailed              Status = "failed"
)

// Event is one recorded condition. EntityID is the identifier of the source
// entity the event belongs to ("" for run-level events).
type Event struct {
	Stage    Stage    `json:"stage"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	EntityID string   `json:"entity_id,omitempty"`
}

// Report is the single-writer accumulator shared by all pipeline stages.
// It only grows: stages append events and bump counters, nothing is ever
// rewritten, so event order is the order conditions were observed.
type Report struct {
	SourceDir string `json:"source_dir"`
	OutputDir string `json:"output_dir"`

	events   []Event
	counters map[string]int
}

func New(sourceDir, outputDir string) *Report {
	return &Report{
		SourceDir: sourceDir,
		OutputDir: outputDir,
		counters:  map[string]int{},
	}
}

func (r *Report) Append(stage Stage, sev Severity, msg, entityID string) {
	r.events = append(r.events, Event{Stage: stage, Severity: sev, Message: msg, EntityID: entityID})
}

func (r *Report) Info(stage Stage, msg, entityID string) {
	r.Append(stage, SeverityInfo, msg, entityID)
}

func (r *Report) Warn(stage Stage, msg, entityID string) {
	r.Append(stage, SeverityWarning, msg, entityID)
}

func (r *Report) Error(stage Stage, msg, entityID string) {
	r.Append(stage, SeverityError, msg, entityID)
}

// Count adds n to a named counter (e.g. "pages", "recovered", "questions").
func (r *Report) Count(name string, n int) {
	r.counters[name] += n
}

// Counter returns the current value of a named counter.
func (r *Report) Counter(name string) int {
	return r.counters[name]
}

// Events returns a copy of the recorded events in append order.
func (r *Report) Events() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Counters returns a copy of all counters.
func (r *Report) Counters() map[string]int {
	out := make(map[string]int, len(r.counters))
	for k, v := range r.counters {
		out[k] = v
	}
	return out
}

// TotalBySeverity counts events of the given severity.
func (r *Report) TotalBySeverity(sev Severity) int {
	n := 0
	for _, e := range r.events {
		if e.Severity == sev {
			n++
		}
	}
	return n
}

// Status derives the terminal status. An error from manifest parsing or
// integrity verification fails the whole run; every other error or warning
// downgrades to success-with-warnings.
func (r *Report) Status() Status {
	warned := false
	for _, e := range r.events {
		switch e.Severity {
		case SeverityError:
			if e.Stage == StageManifest || e.Stage == StageVerify {
				return StatusFailed
			}
			warned = true
		case SeverityWarning:
			warned = true
		}
	}
	if warned {
		return StatusSuccessWithWarnings
	}
	return StatusSuccess
}

// Snapshot is the serializable, frozen form of the report handed to the
// renderer and any external consumer. It carries no live references.
type Snapshot struct {
	Status    Status         `json:"status"`
	SourceDir string         `json:"source_dir"`
	OutputDir string         `json:"output_dir"`
	Counters  map[string]int `json:"counters"`
	Errors    int            `json:"errors"`
	Warnings  int            `json:"warnings"`
	Events    []Event        `json:"events"`
}

func (r *Report) Snapshot() Snapshot {
	return Snapshot{
		Status:    r.Status(),
		SourceDir: r.SourceDir,
		OutputDir: r.OutputDir,
		Counters:  r.Counters(),
		Errors:    r.TotalBySeverity(SeverityError),
		Warnings:  r.TotalBySeverity(SeverityWarning),
		Events:    r.Events(),
	}
}
