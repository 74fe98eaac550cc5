package transaction

// ReferencePrefix starts every transaction reference.
const ReferencePrefix = "TX"

// Operation names reported to metrics.
const (
	opExecute  = "transaction.execute"
	opValidate = "transaction.validate"
	opReject   = "transaction.reject"
)
