package log

// Common field names used across the codebase.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldDuration  = "duration_ms"

	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldRemote    = "remote"

	FieldKind      = "kind"
	FieldTitle     = "title"
	FieldAmount    = "amount_satang"
	FieldRemaining = "remaining_satang"
	FieldID        = "id"
	FieldYear      = "year"
	FieldMonth     = "month"
	FieldCount     = "count"

	FieldTopic    = "topic"
	FieldOp       = "op"
	FieldQueue    = "queue"
	FieldExchange = "exchange"
	FieldKey      = "key"
)

// Component names.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentStore    = "store"
	ComponentCache    = "cache"
	ComponentService  = "service"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentExporter = "exporter"
)
