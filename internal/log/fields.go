package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldRecordID    = "record_id"
	FieldDate        = "date"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldRecords     = "records"
	FieldTarget      = "target"
	FieldPeriod      = "period"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentService = "expense"
	ComponentStorage = "storage"
	ComponentSheets  = "sheets"
	ComponentAMQP    = "amqp"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpAdd      = "add"
	OpDelete   = "delete"
	OpList     = "list"
	OpReport   = "report"
	OpExport   = "export"
	OpImport   = "import"
	OpClear    = "clear"
	OpConsume  = "consume"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields starts an empty field set.
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds err under FieldError; a nil err adds nothing.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the identifying fields of one ledger record.
func (f LogFields) WithRecord(id int64, date, category string, amountCents int64) LogFields {
	f[FieldRecordID] = id
	f[FieldDate] = date
	f[FieldCategory] = category
	f[FieldAmountCents] = amountCents
	return f
}

// WithTransfer describes an import or export.
func (f LogFields) WithTransfer(target string, records int, durationMs int64) LogFields {
	f[FieldTarget] = target
	f[FieldRecords] = records
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
