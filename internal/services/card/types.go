package card

import "relais/internal/models"

type AssignInput struct {
	AgentID   uint    `json:"agent_id" validate:"required"`
	FaceValue float64 `json:"face_value" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0,lte=1000"`
}

// RowError reports a CSV line that could not be imported.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportReport summarises a batch import.
type ImportReport struct {
	BatchRef   string     `json:"batch_ref"`
	Imported   int64      `json:"imported"`
	Duplicates []string   `json:"duplicates"`
	Invalid    []RowError `json:"invalid"`
}

// Sale is a sold card with its PIN revealed to the selling agent.
type Sale struct {
	Card      models.PrepaidCard `json:"card"`
	Reference string             `json:"reference"`
}
