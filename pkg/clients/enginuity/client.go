package enginuity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

// APIClient is a resty-backed client of the catalog and quotation REST API.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a client for the server listening at baseURL.
func NewClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")+"/api").
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("enginuity api error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("enginuity api error: status=%d, message=%s", e.StatusCode, e.Message)
}

// CompareRequest is the body of a price comparison.
type CompareRequest struct {
	Selections  []models.Selection `json:"selections"`
	SupplierIDs []string           `json:"supplierIds,omitempty"`
}

// ComputeRequest is the body of a quotation costing.
type ComputeRequest struct {
	SupplierID string             `json:"supplierId"`
	Tier       models.Tier        `json:"tier"`
	Selections []models.Selection `json:"selections"`
}

// ComputeResponse is a costing with the supplier it was priced for.
type ComputeResponse struct {
	models.QuotationCosting
	Supplier *models.Supplier `json:"supplier"`
}

// Compare ranks suppliers by the total cost of the selection.
func (c *APIClient) Compare(ctx context.Context, req CompareRequest) (*models.PriceComparison, error) {
	result := new(models.PriceComparison)
	if err := c.do(ctx, http.MethodPost, "/quotations/compare", req, result); err != nil {
		return nil, fmt.Errorf("compare prices: %w", err)
	}
	return result, nil
}

// Compute prices the selection for one supplier and tier.
func (c *APIClient) Compute(ctx context.Context, req ComputeRequest) (*ComputeResponse, error) {
	result := new(ComputeResponse)
	if err := c.do(ctx, http.MethodPost, "/quotations/compute", req, result); err != nil {
		return nil, fmt.Errorf("compute quotation: %w", err)
	}
	return result, nil
}

// TierMarkups fetches the tier table.
func (c *APIClient) TierMarkups(ctx context.Context) (models.TierMarkupTable, error) {
	result := models.TierMarkupTable{}
	if err := c.do(ctx, http.MethodGet, "/preferences/tier-markups", nil, &result); err != nil {
		return nil, fmt.Errorf("get tier markups: %w", err)
	}
	return result, nil
}

// UpdateTierMarkups replaces the tier table.
func (c *APIClient) UpdateTierMarkups(ctx context.Context, table models.TierMarkupTable) (models.TierMarkupTable, error) {
	result := models.TierMarkupTable{}
	if err := c.do(ctx, http.MethodPut, "/preferences/tier-markups", table, &result); err != nil {
		return nil, fmt.Errorf("update tier markups: %w", err)
	}
	return result, nil
}

// ListSuppliers returns every supplier.
func (c *APIClient) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var result []models.Supplier
	if err := c.do(ctx, http.MethodGet, "/suppliers", nil, &result); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return result, nil
}

// Sweep runs the catalog maintenance pass on the server.
func (c *APIClient) Sweep(ctx context.Context, dryRun bool) (*models.SweepReport, error) {
	result := new(models.SweepReport)
	path := fmt.Sprintf("/admin/catalog/sweep?dryRun=%t", dryRun)
	if err := c.do(ctx, http.MethodPost, path, nil, result); err != nil {
		return nil, fmt.Errorf("catalog sweep: %w", err)
	}
	return result, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, result interface{}) error {
	apiErr := new(APIError)

	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		apiErr.StatusCode = resp.StatusCode()
		return apiErr
	}
	return nil
}
