// Package business integrates the interview with the shop's backoffice API:
// product catalog, sale and purchase ledgers and the stock projection report.
// The JSON field names are the backoffice wire format and stay in Spanish.
package business

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/lgarza/tiendita/internal/errors"
)

// ErrProjection means the stock projection endpoint returned a malformed payload.
var ErrProjection = errors.NewSentinel("invalid stock projection data structure")

var errStatus = errors.NewSentinel("unexpected response status")

// Product is a read-only catalog snapshot row, fetched fresh per action.
type Product struct {
	ID        int64   `json:"id_producto"`
	Name      string  `json:"nombre"`
	SellPrice float64 `json:"precio_venta"`
	Stock     float64 `json:"stock"`
	Unit      string  `json:"unidad_medida"`
}

// SaleLine is one extracted line item of a sale.
type SaleLine struct {
	ProductID int64   `json:"id_producto"`
	Name      string  `json:"nombre"`
	Quantity  float64 `json:"cantidad"`
	UnitPrice float64 `json:"precio_unitario"`
	Subtotal  float64 `json:"subtotal"`
}

// Sale is the payload for POST /api/ventas.
type Sale struct {
	EmployeeID int64      `json:"id_empleado"`
	Date       string     `json:"fecha"`
	Total      float64    `json:"total"`
	Lines      []SaleLine `json:"detalles"`
}

// PurchaseLine is one line item of a purchase, remapped from a SaleLine.
type PurchaseLine struct {
	ProductID    int64   `json:"id_producto"`
	PackageCount int     `json:"cantidad_paquetes"`
	Quantity     float64 `json:"cantidad_total_producto"`
	UnitCost     float64 `json:"costo_unitario"`
	Subtotal     float64 `json:"subtotal"`
	Description  string  `json:"descripcion"`
}

// Purchase is the payload for POST /api/compras.
type Purchase struct {
	SupplierID int64          `json:"id_proveedor"`
	OrderID    int64          `json:"id_orden"`
	Date       string         `json:"fecha"`
	Total      float64        `json:"total"`
	Lines      []PurchaseLine `json:"detalles"`
}

// ProjectionRow is one product's stock projection.
type ProjectionRow struct {
	Product           string  `json:"producto"`
	CurrentStock      float64 `json:"stock_actual"`
	WeekSales         float64 `json:"ventas_ultima_semana"`
	WeekPurchases     float64 `json:"compras_ultima_semana"`
	ProjectedStock    float64 `json:"stock_proyectado"`
	DailySalesAvg     float64 `json:"promedio_ventas_diario"`
	DailyPurchasesAvg float64 `json:"promedio_compras_diario"`
}

// Projection is the validated payload of GET /api/productos/stock-proyeccion.
type Projection struct {
	Period   string          `json:"periodo"`
	Products []ProjectionRow `json:"productos"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{}, //nolint:exhaustruct // default transport and timeouts.
		logger:     logger,
	}
}

// Products fetches the current catalog. The endpoint returns either a bare array
// or a {"data": [...]} envelope; any other shape is treated as an empty catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	body, err := c.get(ctx, "/api/productos")
	if err != nil {
		return nil, errors.Wrap(err, "fetch products")
	}

	var products []Product
	if err = json.Unmarshal(body, &products); err == nil {
		return products, nil
	}

	var envelope struct {
		Data []Product `json:"data"`
	}
	if err = json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	c.logger.LogAttrs(ctx, slog.LevelWarn, "products response has unexpected shape, treating as empty catalog")
	return nil, nil
}

// PostSale records a sale in the ledger.
func (c *Client) PostSale(ctx context.Context, sale Sale) error {
	if err := c.post(ctx, "/api/ventas", sale); err != nil {
		return errors.Wrap(err, "post sale")
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "sale posted",
		slog.Float64("total", sale.Total), slog.Int("lines", len(sale.Lines)))
	return nil
}

// PostPurchase records a purchase in the ledger.
func (c *Client) PostPurchase(ctx context.Context, purchase Purchase) error {
	if err := c.post(ctx, "/api/compras", purchase); err != nil {
		return errors.Wrap(err, "post purchase")
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "purchase posted",
		slog.Float64("total", purchase.Total), slog.Int("lines", len(purchase.Lines)))
	return nil
}

// StockProjection fetches next week's stock projection. Unlike Products, a
// malformed payload is an error here since the report cannot degrade gracefully.
func (c *Client) StockProjection(ctx context.Context) (*Projection, error) {
	body, err := c.get(ctx, "/api/productos/stock-proyeccion")
	if err != nil {
		return nil, errors.Wrap(err, "fetch stock projection")
	}

	var response struct {
		Success bool        `json:"success"`
		Data    *Projection `json:"data"`
	}
	if err = json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(errors.Join(ErrProjection, err), "unmarshal stock projection")
	}
	if !response.Success || response.Data == nil || response.Data.Products == nil {
		return nil, errors.Wrap(ErrProjection, "stock projection missing fields")
	}
	return response.Data, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request", slog.String("path", path))
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal payload", slog.String("path", path))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create request", slog.String("path", path))
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request", slog.String("url", req.URL.String()))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body", slog.String("url", req.URL.String()))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Wrap(errStatus, "request failed",
			slog.String("url", req.URL.String()), slog.Int("status", resp.StatusCode))
	}
	return body, nil
}
