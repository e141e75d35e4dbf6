package api

import (
	"context"
	"fmt"
	"sync"

	"danceschool/entities"
)

type PaystackMock struct {
	mock sync.Mutex

	InitializedPayments []entities.PaymentInitRequest
	Refunds             []entities.PaymentRefundRequest
	VerifyStatus        entities.PaymentStatus
}

func (c *PaystackMock) Initialize(ctx context.Context, req entities.PaymentInitRequest) (entities.PaymentInit, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	c.InitializedPayments = append(c.InitializedPayments, req)
	return entities.PaymentInit{
		AuthorizationURL: fmt.Sprintf("https://checkout.example.com/%s", req.Reference),
		AccessCode:       "mocked-access-code",
		Reference:        req.Reference,
	}, nil
}

func (c *PaystackMock) Verify(ctx context.Context, reference string) (entities.PaymentStatus, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	if c.VerifyStatus == "" {
		return entities.PaymentStatusPending, nil
	}
	return c.VerifyStatus, nil
}

func (c *PaystackMock) Refund(ctx context.Context, req entities.PaymentRefundRequest) error {
	c.mock.Lock()
	defer c.mock.Unlock()

	c.Refunds = append(c.Refunds, req)
	return nil
}
