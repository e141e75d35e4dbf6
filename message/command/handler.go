package command

import (
	"context"

	"danceschool/entities"
)

type PaymentsService interface {
	Refund(ctx context.Context, req entities.PaymentRefundRequest) error
}

type PaymentsRepository interface {
	GetByReference(ctx context.Context, reference string) (entities.PaymentLog, error)
	MarkRefunded(ctx context.Context, reference string) (entities.PaymentLog, error)
}

type Handler struct {
	paymentsService PaymentsService
	paymentsRepo    PaymentsRepository
}

func NewHandler(paymentsService PaymentsService, paymentsRepo PaymentsRepository) Handler {
	if paymentsService == nil {
		panic("paymentsService is required")
	}
	if paymentsRepo == nil {
		panic("paymentsRepo is required")
	}
	return Handler{
		paymentsService: paymentsService,
		paymentsRepo:    paymentsRepo,
	}
}
