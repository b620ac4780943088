package outbox

const activityCreatedSchema = `{
  "type": "object",
  "title": "ActivityCreated",
  "properties": {
    "activity_id": {"type": "string"},
    "stable_id": {"type": "string"},
    "activity_type": {"type": "string"},
    "activity_date": {"type": "string", "format": "date-time"},
    "scheduled_time": {"type": "string"},
    "duration_min": {"type": "integer"},
    "assigned_to": {"type": "string"},
    "horses": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["activity_id", "stable_id", "activity_type", "activity_date"],
  "additionalProperties": false
}`

const activityStatusChangedSchema = `{
  "type": "object",
  "title": "ActivityStatusChanged",
  "properties": {
    "activity_id": {"type": "string"},
    "stable_id": {"type": "string"},
    "assigned_to": {"type": "string"},
    "status": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"},
    "reason": {"type": "string"}
  },
  "required": ["activity_id", "stable_id", "status", "occurred_at"],
  "additionalProperties": false
}`

const routineStepRecordedSchema = `{
  "type": "object",
  "title": "RoutineStepRecorded",
  "properties": {
    "routine_id": {"type": "string"},
    "stable_id": {"type": "string"},
    "routine_name": {"type": "string"},
    "steps_completed": {"type": "integer"},
    "steps_total": {"type": "integer"},
    "percent_complete": {"type": "integer"},
    "status": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["routine_id", "stable_id", "steps_completed", "steps_total", "percent_complete", "status", "occurred_at"],
  "additionalProperties": false
}`
