package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"danceschool/entities"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type PaystackClient struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

func NewPaystackClient(baseURL, secretKey string) *PaystackClient {
	if secretKey == "" {
		panic("Paystack secret key is empty")
	}
	return &PaystackClient{
		httpClient: &http.Client{
			Timeout:   time.Second * 15,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:   baseURL,
		secretKey: secretKey,
	}
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *PaystackClient) Initialize(ctx context.Context, req entities.PaymentInitRequest) (entities.PaymentInit, error) {
	subunits, err := req.Amount.Subunits()
	if err != nil {
		return entities.PaymentInit{}, fmt.Errorf("invalid payment amount %q: %w", req.Amount.Amount, err)
	}

	body := map[string]any{
		"email":     req.Email,
		"amount":    subunits,
		"currency":  req.Amount.Currency,
		"reference": req.Reference,
		"metadata": map[string]string{
			"ticket_id": req.TicketID,
		},
	}
	if req.Callback != "" {
		body["callback_url"] = req.Callback
	}

	data, err := c.post(ctx, "/transaction/initialize", body)
	if err != nil {
		return entities.PaymentInit{}, err
	}

	var out struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return entities.PaymentInit{}, fmt.Errorf("could not decode initialize response: %w", err)
	}

	return entities.PaymentInit{
		AuthorizationURL: out.AuthorizationURL,
		AccessCode:       out.AccessCode,
		Reference:        out.Reference,
	}, nil
}

func (c *PaystackClient) Verify(ctx context.Context, reference string) (entities.PaymentStatus, error) {
	data, err := c.get(ctx, "/transaction/verify/"+reference)
	if err != nil {
		return "", err
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("could not decode verify response: %w", err)
	}

	switch out.Status {
	case "success":
		return entities.PaymentStatusSuccess, nil
	case "failed":
		return entities.PaymentStatusFailed, nil
	default:
		return entities.PaymentStatusPending, nil
	}
}

func (c *PaystackClient) Refund(ctx context.Context, req entities.PaymentRefundRequest) error {
	body := map[string]any{
		"transaction": req.Reference,
	}
	if req.Amount != nil {
		subunits, err := req.Amount.Subunits()
		if err != nil {
			return fmt.Errorf("invalid refund amount %q: %w", req.Amount.Amount, err)
		}
		body["amount"] = subunits
	}

	_, err := c.post(ctx, "/refund", body)
	return err
}

func (c *PaystackClient) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *PaystackClient) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

func (c *PaystackClient) do(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read paystack response: %w", err)
	}

	var envelope paystackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected paystack response (status %d)", resp.StatusCode)
	}

	if resp.StatusCode >= http.StatusBadRequest || !envelope.Status {
		return nil, fmt.Errorf("paystack returned status %d: %s", resp.StatusCode, envelope.Message)
	}

	return envelope.Data, nil
}
