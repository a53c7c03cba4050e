package game

// EventKind names the completed action an event records.
type EventKind string

const (
	EventPlayProject     EventKind = "play_project"
	EventProjectAction   EventKind = "project_action"
	EventStandardProject EventKind = "standard_project"
	EventCorpAction      EventKind = "corp_action"
	EventMilestone       EventKind = "milestone"
	EventAward           EventKind = "award"
	EventPass            EventKind = "pass"
	EventGeneration      EventKind = "generation_changed"
)

// Event is appended once per committed action.
type Event struct {
	Seq             int       `json:"seq"`
	Generation      int       `json:"gen"`
	Kind            EventKind `json:"kind"`
	Player          int       `json:"player"`
	Project         int       `json:"project,omitempty"`
	StandardProject int       `json:"standard_project,omitempty"`
	Milestone       Milestone `json:"milestone,omitempty"`
	Award           Award     `json:"award,omitempty"`
	Tiles           []int     `json:"tiles,omitempty"`
}

func (d *Document) Append(ev Event) Event {
	ev.Seq = len(d.Events)
	ev.Generation = d.Generation
	d.Events = append(d.Events, ev)
	return ev
}

// EventsSince returns events with Seq >= since.
func (d *Document) EventsSince(since int) []Event {
	if since < 0 {
		since = 0
	}
	if since >= len(d.Events) {
		return nil
	}
	return append([]Event(nil), d.Events[since:]...)
}
