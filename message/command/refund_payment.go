package command

import (
	"context"
	"fmt"

	"danceschool/entities"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

func (h Handler) RefundPayment(ctx context.Context, cmd *entities.RefundPayment) error {
	log.FromContext(ctx).WithField("reference", cmd.Reference).Info("Refunding payment")

	paymentLog, err := h.paymentsRepo.GetByReference(ctx, cmd.Reference)
	if err != nil {
		return fmt.Errorf("could not load payment log for refund: %w", err)
	}

	err = h.paymentsService.Refund(ctx, entities.PaymentRefundRequest{
		Reference: paymentLog.Reference,
		Amount:    &paymentLog.Amount,
	})
	if err != nil {
		return fmt.Errorf("provider refund for %s failed: %w", cmd.Reference, err)
	}

	if _, err := h.paymentsRepo.MarkRefunded(ctx, cmd.Reference); err != nil {
		return fmt.Errorf("could not mark payment refunded: %w", err)
	}

	return nil
}
