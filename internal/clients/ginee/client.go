package ginee

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Retry policy for the Ginee API. Rate limiting and transient server
// errors back off exponentially; anything else fails immediately.
const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	backoffFactor  = 2
)

// Client talks to the Ginee open API. Every request is signed with
// HMAC-SHA256 over "METHOD$PATH$" using the account's secret key.
type Client struct {
	baseURL    string
	accessKey  string
	secretKey  string
	httpClient *http.Client
	logger     *logrus.Entry
}

func NewClient(baseURL, accessKey, secretKey string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		accessKey:  accessKey,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.WithField("component", "ginee-client"),
	}
}

// MasterProduct is one product row from the Ginee master catalog
type MasterProduct struct {
	ProductID      string `json:"productId"`
	MasterSKU      string `json:"masterSku"`
	Name           string `json:"name"`
	WarehouseStock int    `json:"warehouseStock"`
}

type listProductsRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

type listProductsResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Total int             `json:"total"`
		List  []MasterProduct `json:"list"`
	} `json:"data"`
}

type pushStockRequest struct {
	MasterSKU string `json:"masterSku"`
	Quantity  int    `json:"quantity"`
}

type apiResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListMasterProducts fetches one page of the Ginee master catalog
func (c *Client) ListMasterProducts(ctx context.Context, page, size int) ([]MasterProduct, int, error) {
	var response listProductsResponse
	err := c.post(ctx, "/openapi/product/master/v1/list", listProductsRequest{Page: page, Size: size}, &response)
	if err != nil {
		return nil, 0, err
	}
	if response.Code != "SUCCESS" {
		return nil, 0, fmt.Errorf("ginee list products failed: %s", response.Message)
	}
	return response.Data.List, response.Data.Total, nil
}

// PushStock reports a local stock level to Ginee so marketplace listings
// stay in sync
func (c *Client) PushStock(ctx context.Context, sku string, quantity int) error {
	var response apiResponse
	err := c.post(ctx, "/openapi/product/master/v1/stock/update", pushStockRequest{MasterSKU: sku, Quantity: quantity}, &response)
	if err != nil {
		return err
	}
	if response.Code != "SUCCESS" {
		return fmt.Errorf("ginee stock push failed: %s", response.Message)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	backoff := initialBackoff
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"path":    path,
				"attempt": attempt,
			}).Warn("retrying ginee request")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= backoffFactor
		}

		status, respBody, err := c.doRequest(ctx, path, payload)
		if err != nil {
			lastErr = err
			continue
		}
		if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("ginee returned status %d", status)
			continue
		}
		if status != http.StatusOK {
			return fmt.Errorf("ginee returned status %d: %s", status, string(respBody))
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode ginee response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("ginee request failed after %d attempts: %w", maxRetries+1, lastErr)
}

func (c *Client) doRequest(ctx context.Context, path string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.sign(http.MethodPost, path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func (c *Client) sign(method, path string) string {
	signStr := fmt.Sprintf("%s$%s$", method, path)
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(signStr))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("%s:%s", c.accessKey, signature)
}
