package payprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент платежного провайдера
// Все вызовы ограничены таймаутом; таймаут трактуется как неизвестный исход
// (ErrIndeterminate), а не как отказ - вызывающая сторона решает, повторять ли
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента платежного провайдера
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Charge списывает amount с плательщика payerRef
// Возвращает ссылку провайдера на платеж
func (c *Client) Charge(ctx context.Context, amount float64, currency string, payerRef string) (string, error) {
	reqBody := ChargeRequest{
		Amount:   amount,
		Currency: currency,
		PayerRef: payerRef,
	}

	var resp ChargeResponse
	if err := c.post(ctx, "/v1/charges", reqBody, &resp, ErrChargeDeclined); err != nil {
		return "", err
	}

	if resp.ProviderRef == "" {
		return "", fmt.Errorf("%w: empty providerRef in charge response", ErrInvalidResponse)
	}

	c.log.Info("Charge succeeded: payer=%s, amount=%.2f %s, provider_ref=%s",
		payerRef, amount, currency, resp.ProviderRef)
	return resp.ProviderRef, nil
}

// Refund возвращает средства по ранее сделанному платежу providerRef
func (c *Client) Refund(ctx context.Context, providerRef string) (string, error) {
	reqBody := RefundRequest{ProviderRef: providerRef}

	var resp RefundResponse
	if err := c.post(ctx, "/v1/refunds", reqBody, &resp, ErrRefundDeclined); err != nil {
		return "", err
	}

	if resp.RefundRef == "" {
		return "", fmt.Errorf("%w: empty refundRef in refund response", ErrInvalidResponse)
	}

	c.log.Info("Refund succeeded: provider_ref=%s, refund_ref=%s", providerRef, resp.RefundRef)
	return resp.RefundRef, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody interface{}, out interface{}, declinedErr error) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Таймаут и обрыв соединения - неизвестный исход:
		// запрос мог дойти до провайдера и исполниться
		if isTimeout(err) {
			c.log.Warn("Provider call timed out: %s: %v", path, err)
			return fmt.Errorf("%w: %v", ErrIndeterminate, err)
		}
		return fmt.Errorf("%w: failed to execute request: %v", ErrIndeterminate, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Продолжаем обработку
	case http.StatusPaymentRequired, http.StatusUnprocessableEntity:
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			return fmt.Errorf("%w: %s (%s)", declinedErr, errResp.Message, errResp.Code)
		}
		return declinedErr
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
