package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/pet-marketplace/internal/domains/sales/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

// CreateOrderActivityName is the registered name of the order creation activity.
const CreateOrderActivityName = "orders.activities.CreateOrder"

// Application error types carried across the workflow boundary.
const (
	ErrTypeValidation      = "Validation"
	ErrTypeNotFound        = "NotFound"
	ErrTypeForbidden       = "Forbidden"
	ErrTypeConflict        = "Conflict"
	ErrTypeUnauthenticated = "Unauthenticated"
	ErrTypeUnavailablePets = "UnavailablePets"
)

// CheckoutCommand is the serialisable payload of a checkout.
type CheckoutCommand struct {
	Principal authz.Principal
	Input     types.CreateOrderInput
}

// Activities groups activities that operate on the sales bounded context.
type Activities struct {
	service ports.Service
}

func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// CreateOrder runs the order transaction. Domain failures are returned as
// non-retryable application errors so the workflow fails fast.
func (a *Activities) CreateOrder(ctx context.Context, cmd CheckoutCommand) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order activity not initialized")
		return nil, errors.New("order activity not initialized")
	}
	logger.Info("CreateOrder activity started", "buyerId", cmd.Principal.UserID, "petIds", cmd.Input.PetIDs)
	order, err := a.service.CreateOrder(ctx, cmd.Principal, cmd.Input)
	if err != nil {
		logger.Error("CreateOrder activity failed", "buyerId", cmd.Principal.UserID, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("CreateOrder activity completed", "orderId", order.ID)
	return order, nil
}

// EncodeError turns classified errors into non-retryable application errors.
// Unclassified errors are returned unchanged and stay retryable.
func EncodeError(err error) error {
	var unavailable *domain.UnavailablePetsError
	if errors.As(err, &unavailable) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeUnavailablePets, nil, unavailable.Pets)
	}
	var errType string
	switch apperr.KindOf(err) {
	case apperr.ErrValidation:
		errType = ErrTypeValidation
	case apperr.ErrNotFound:
		errType = ErrTypeNotFound
	case apperr.ErrForbidden:
		errType = ErrTypeForbidden
	case apperr.ErrConflict:
		errType = ErrTypeConflict
	case apperr.ErrUnauthenticated:
		errType = ErrTypeUnauthenticated
	default:
		return err
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), errType, nil)
}

// DecodeError restores the error kind of an application error raised by
// CreateOrder anywhere in err's chain.
func DecodeError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	msg := appErr.Error()
	switch appErr.Type() {
	case ErrTypeUnavailablePets:
		var pets []domain.PetSummary
		if appErr.HasDetails() && appErr.Details(&pets) == nil {
			return apperr.Wrap(apperr.ErrConflict, &domain.UnavailablePetsError{Pets: pets})
		}
		return apperr.Conflict("%s", msg)
	case ErrTypeValidation:
		return apperr.Validation("%s", msg)
	case ErrTypeNotFound:
		return apperr.Wrap(apperr.ErrNotFound, errors.New(msg))
	case ErrTypeForbidden:
		return apperr.Forbidden("%s", msg)
	case ErrTypeConflict:
		return apperr.Conflict("%s", msg)
	case ErrTypeUnauthenticated:
		return apperr.Wrap(apperr.ErrUnauthenticated, errors.New(msg))
	}
	return err
}
