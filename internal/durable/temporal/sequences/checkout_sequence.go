package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	orderactivities "github.com/Apurer/pet-marketplace/internal/durable/temporal/activities/orders"
)

// RunCheckoutSequence executes the activities that turn a checkout command into an order.
func RunCheckoutSequence(ctx workflow.Context, cmd orderactivities.CheckoutCommand) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	buyerID := cmd.Principal.UserID
	logger.Info("checkout sequence started", "buyerId", buyerID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}

	var order domain.Order
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), orderactivities.CreateOrderActivityName, cmd).Get(ctx, &order)
	if err != nil {
		logger.Error("checkout sequence failed", "buyerId", buyerID, "error", err)
		return nil, err
	}
	logger.Info("checkout sequence completed", "orderId", order.ID)
	return &order, nil
}
