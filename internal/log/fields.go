package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldCategory      = "category"
	FieldAmount        = "amount"
	FieldDateMillis    = "date_ms"
	FieldQueue         = "queue"
	FieldExchange      = "exchange"
	FieldFeedOp        = "feed_op"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentStorage    = "storage"
	ComponentRepository = "repository"
	ComponentController = "controller"
	ComponentFeed       = "feed"
	ComponentWorker     = "worker"
)

// Operations defines standard operation names
const (
	OpAdd      = "add"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpGet      = "get"
	OpObserve  = "observe"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
