package transaction

type ExecuteInput struct {
	OperationTypeID uint                   `json:"operation_type_id" validate:"required"`
	Amount          float64                `json:"amount" validate:"required,gt=0"`
	Fields          map[string]interface{} `json:"fields"`
}

type RejectInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ReassignInput struct {
	AssigneeID uint `json:"assignee_id" validate:"required"`
}
