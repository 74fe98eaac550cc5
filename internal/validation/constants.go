package validation

const (
	// Amount limits, whole currency units
	MinTransactionAmount = 1
	MaxTransactionAmount = 10000000

	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// String lengths
	MaxReasonLength = 255
)
