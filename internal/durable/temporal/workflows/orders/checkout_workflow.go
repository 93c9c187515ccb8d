package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	orderactivities "github.com/Apurer/pet-marketplace/internal/durable/temporal/activities/orders"
	"github.com/Apurer/pet-marketplace/internal/durable/temporal/sequences"
)

const (
	// CheckoutWorkflowName is the public identifier for registering the workflow.
	CheckoutWorkflowName = "orders.workflows.Checkout"
	// CheckoutTaskQueue is the queue consumed by the worker processing checkouts.
	CheckoutTaskQueue = "ORDER_CHECKOUT"
)

// CheckoutWorkflowInput captures the payload required to place an order.
type CheckoutWorkflowInput struct {
	Command orderactivities.CheckoutCommand
	TraceID string
}

// CheckoutWorkflow places an order through the checkout sequence.
func CheckoutWorkflow(ctx workflow.Context, input CheckoutWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	buyerID := input.Command.Principal.UserID
	logger.Info("CheckoutWorkflow started", withTraceID(input.TraceID, "buyerId", buyerID)...)
	order, err := sequences.RunCheckoutSequence(ctx, input.Command)
	if err != nil {
		logger.Error("CheckoutWorkflow failed", withTraceID(input.TraceID, "buyerId", buyerID, "error", err)...)
		return nil, err
	}
	logger.Info("CheckoutWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID)...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
