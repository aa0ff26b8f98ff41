package logging

// Shared structured-log field names. Keeping them here avoids drift between
// the two poll loops when dashboards filter on attribute keys.
const (
	FieldComponent = "component"
	FieldIdentity  = "identity"
	FieldPath      = "path"
	FieldMeeting   = "meeting"
	FieldTopic     = "topic"
	FieldCycle     = "cycle"
	FieldCount     = "count"
	FieldDuration  = "duration"
)
