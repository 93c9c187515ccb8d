package types

// CreateOrderInput asks to buy a set of pets. Duplicate ids are collapsed.
// A non-empty IdempotencyKey makes retries of the same request return the
// order created by the first attempt.
type CreateOrderInput struct {
	PetIDs         []int64
	IdempotencyKey string
}

// UpdateOrderStatusInput moves an order to Status, optionally recording the
// payment provider reference.
type UpdateOrderStatusInput struct {
	OrderID    int64
	Status     string
	PaymentRef *string
}
