package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"promptpay-checkout/internal/config"
	"promptpay-checkout/internal/model"
)

// OmiseClient is the call boundary to the payment processor. Create and
// retrieve operations are safe to repeat; the processor is the source of
// truth for everything it returns.
type OmiseClient interface {
	CreateSource(ctx context.Context, sourceType string, amount int64, currency string) (*model.Source, error)
	CreateCharge(ctx context.Context, amount int64, sourceID, currency string) (*model.Charge, error)
	RetrieveCharge(ctx context.Context, chargeID string) (*model.Charge, error)
}

type omiseClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	secretKey  string
}

func NewOmiseClient(omiseCfg *config.Omise) OmiseClient {
	return &omiseClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: omiseCfg.BaseApiURL,
		secretKey:  omiseCfg.SecretKey,
	}
}

func (c *omiseClientImpl) CreateSource(ctx context.Context, sourceType string, amount int64, currency string) (*model.Source, error) {
	form := url.Values{}
	form.Set("type", sourceType)
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)

	var source model.Source
	if err := c.do(ctx, http.MethodPost, "/sources", form, &source); err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}

	return &source, nil
}

func (c *omiseClientImpl) CreateCharge(ctx context.Context, amount int64, sourceID, currency string) (*model.Charge, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("source", sourceID)
	form.Set("currency", currency)

	var charge model.Charge
	if err := c.do(ctx, http.MethodPost, "/charges", form, &charge); err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}

	return &charge, nil
}

func (c *omiseClientImpl) RetrieveCharge(ctx context.Context, chargeID string) (*model.Charge, error) {
	var charge model.Charge
	if err := c.do(ctx, http.MethodGet, "/charges/"+url.PathEscape(chargeID), nil, &charge); err != nil {
		return nil, fmt.Errorf("retrieve charge %s: %w", chargeID, err)
	}

	return &charge, nil
}

func (c *omiseClientImpl) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = bytes.NewBufferString(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseApiURL+path, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	// the processor authenticates server calls with the secret key as
	// basic-auth user and an empty password
	req.SetBasicAuth(c.secretKey, "")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("processor error %d: %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode processor response: %w", err)
	}

	return nil
}
