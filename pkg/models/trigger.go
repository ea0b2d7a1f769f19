package models

// TriggerKind is the closed set of events that can start a workflow.
type TriggerKind string

const (
	TriggerKindManual        TriggerKind = "manual"
	TriggerKindRecordCreated TriggerKind = "record-created"
	TriggerKindRecordUpdated TriggerKind = "record-updated"
	TriggerKindRecordDeleted TriggerKind = "record-deleted"
	TriggerKindScheduleTick  TriggerKind = "schedule-tick"
)

// Trigger configures what starts a workflow. Record kinds require an entity
// logical name, schedule-tick requires a schedule key; manual needs neither.
type Trigger struct {
	Kind              TriggerKind `json:"kind"                        validate:"required,oneof=manual record-created record-updated record-deleted schedule-tick"`
	EntityLogicalName string      `json:"entityLogicalName,omitempty"`
	ScheduleKey       string      `json:"scheduleKey,omitempty"`
}

func (t Trigger) RequiresEntity() bool {
	switch t.Kind {
	case TriggerKindRecordCreated, TriggerKindRecordUpdated, TriggerKindRecordDeleted:
		return true
	case TriggerKindManual, TriggerKindScheduleTick:
		return false
	default:
		return false
	}
}

func (t Trigger) RequiresScheduleKey() bool {
	return t.Kind == TriggerKindScheduleTick
}
