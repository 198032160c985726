package ceepos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"respa-server/internal/infrastructure/config"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

// Client 決済サービスのHTTPクライアント
type Client struct {
	http          *resty.Client
	serviceURL    string
	apiVersion    string
	merchantID    string
	accessMode    int
	returnAddress string
	signer        *Signer
	logger        *otelinfra.Logger
	metrics       *otelinfra.Metrics
	tracer        trace.Tracer
}

// NewClient 新しいClientを作成
func NewClient(cfg *config.CeeposConfig, logger *otelinfra.Logger, metrics *otelinfra.Metrics) *Client {
	httpClient := resty.New()
	httpClient.SetTimeout(cfg.Timeout)
	httpClient.SetHeader("Content-Type", "application/json")
	httpClient.SetLogger(logger.Printf("ceepos"))

	return &Client{
		http:          httpClient,
		serviceURL:    cfg.ServiceURL,
		apiVersion:    cfg.APIVersion,
		merchantID:    cfg.MerchantID,
		accessMode:    cfg.AccessMode,
		returnAddress: cfg.ReturnURL,
		signer:        NewSigner(cfg.APIVersion, cfg.MerchantID, cfg.AccessMode, cfg.MerchantSecret),
		logger:        logger,
		metrics:       metrics,
		tracer:        otel.Tracer("ceepos-client"),
	}
}

// Signer チェックサム計算器を返す
func (c *Client) Signer() *Signer {
	return c.signer
}

// InitializePayment 決済を開始し、決済ページのURLを含む応答を返す
func (c *Client) InitializePayment(ctx context.Context, req *PaymentRequest) (*PaymentRequestAck, error) {
	ctx, span := c.tracer.Start(ctx, "ceepos.InitializePayment")
	defer span.End()

	span.SetAttributes(
		attribute.String("ceepos.order_id", req.OrderID),
		attribute.String("ceepos.action", req.Action),
	)

	body := c.paymentRequestBody(req)
	c.logger.Info(ctx, "Sending payment request", map[string]interface{}{
		"order_id": req.OrderID,
		"action":   req.Action,
		"products": len(req.Products),
	})

	raw, resp, err := c.post(ctx, body)
	if err != nil {
		c.fail(ctx, span, req.Action, err)
		return nil, err
	}

	status, err := strconv.Atoi(text(resp.Status))
	if err != nil || (status != StatusNotPaid && status != StatusPaid && status != StatusInProgress) {
		err := &Error{Message: string(raw), Data: body}
		c.fail(ctx, span, req.Action, err)
		return nil, err
	}

	if !c.validResponse(resp, true) {
		err := &Error{Message: "Failed to validate response", Data: json.RawMessage(raw)}
		c.fail(ctx, span, req.Action, err)
		return nil, err
	}

	ack := &PaymentRequestAck{
		PurchaseID:     text(resp.ID),
		Status:         status,
		Reference:      text(resp.Reference),
		Action:         text(resp.Action),
		PaymentAddress: text(resp.PaymentAddress),
	}

	span.SetAttributes(attribute.Int("ceepos.status", status))
	c.metrics.RecordPaymentRequest(ctx, req.Action, "success")
	c.logger.Info(ctx, "Payment request accepted", map[string]interface{}{
		"order_id":  req.OrderID,
		"status":    status,
		"reference": ack.Reference,
	})

	return ack, nil
}

// CancelPayment 決済を取り消す
func (c *Client) CancelPayment(ctx context.Context, cancel *PaymentCancellation) (*CancellationAck, error) {
	ctx, span := c.tracer.Start(ctx, "ceepos.CancelPayment")
	defer span.End()

	span.SetAttributes(
		attribute.String("ceepos.order_id", cancel.OrderID),
		attribute.String("ceepos.action", cancel.Action),
	)

	body := cancellationBody{
		APIVersion: c.apiVersion,
		Source:     c.merchantID,
		ID:         cancel.OrderID,
		Mode:       c.accessMode,
		Action:     cancel.Action,
		Hash:       c.signer.Cancellation(cancel),
	}
	c.logger.Info(ctx, "Sending payment cancellation", map[string]interface{}{
		"order_id": cancel.OrderID,
	})

	raw, resp, err := c.post(ctx, body)
	if err != nil {
		c.fail(ctx, span, cancel.Action, err)
		return nil, err
	}

	status, err := strconv.Atoi(text(resp.Status))
	if err != nil || status != StatusPaid {
		err := &Error{Message: string(raw), Data: body}
		c.fail(ctx, span, cancel.Action, err)
		return nil, err
	}

	if !c.validResponse(resp, false) {
		err := &Error{Message: "Failed to validate cancellation response", Data: json.RawMessage(raw)}
		c.fail(ctx, span, cancel.Action, err)
		return nil, err
	}

	ack := &CancellationAck{
		OrderID:   text(resp.ID),
		Status:    status,
		Reference: text(resp.Reference),
		Action:    text(resp.Action),
	}

	c.metrics.RecordPaymentRequest(ctx, cancel.Action, "success")
	c.logger.Info(ctx, "Payment cancelled", map[string]interface{}{
		"order_id":  cancel.OrderID,
		"reference": ack.Reference,
	})

	return ack, nil
}

func (c *Client) paymentRequestBody(req *PaymentRequest) paymentRequestBody {
	returnAddress := req.ReturnAddress
	if returnAddress == "" {
		returnAddress = c.returnAddress
	}

	products := make([]productBody, 0, len(req.Products))
	for _, p := range req.Products {
		products = append(products, productBody{Code: p.Code, Price: p.Price})
	}

	return paymentRequestBody{
		APIVersion:          c.apiVersion,
		Source:              c.merchantID,
		ID:                  req.OrderID,
		Mode:                c.accessMode,
		Action:              req.Action,
		Description:         req.Description,
		Products:            products,
		Email:               req.Email,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Language:            req.Language,
		ReturnAddress:       returnAddress,
		NotificationAddress: req.NotificationAddress,
		Hash:                c.signer.PaymentRequest(req, returnAddress),
	}
}

func (c *Client) post(ctx context.Context, body interface{}) ([]byte, *responseBody, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.serviceURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to call payment service: %w", err)
	}

	raw := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return raw, nil, &Error{
			Message: fmt.Sprintf("payment service returned HTTP %d: %s", resp.StatusCode(), string(raw)),
			Code:    resp.StatusCode(),
			Data:    body,
		}
	}

	var decoded responseBody
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return raw, nil, &Error{Message: fmt.Sprintf("invalid response: %s", string(raw)), Data: body}
	}
	return raw, &decoded, nil
}

// validResponse 応答のHashを検証する。必要なキーが欠けていれば無効
func (c *Client) validResponse(resp *responseBody, withPaymentAddress bool) bool {
	fields := []*Value{resp.ID, resp.Status, resp.Reference, resp.Action}
	if withPaymentAddress {
		fields = append(fields, resp.PaymentAddress)
	}
	if resp.Hash == nil {
		return false
	}

	values := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			return false
		}
		values = append(values, f.String())
	}
	return c.signer.Verify(c.signer.Checksum(values...), resp.Hash.String())
}

func (c *Client) fail(ctx context.Context, span trace.Span, action string, err error) {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	c.metrics.RecordPaymentRequest(ctx, action, "failure")
	c.logger.Error(ctx, "Payment service call failed", err, map[string]interface{}{
		"action": action,
	})
}
