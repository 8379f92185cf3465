package market22

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// Order is the authoritative order state as returned by GET /orders/{id}.
type Order struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CustomerEmail string          `json:"customerEmail"`
}

type Product struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type orderResponse struct {
	Order Order `json:"order"`
}

type productResponse struct {
	Product Product `json:"product"`
}

func (c Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("market22: missing order id")
	}
	var resp orderResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/orders/"+escapeID(id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Order.ID == "" {
		return nil, fmt.Errorf("market22: order %s missing from response", id)
	}
	return &resp.Order, nil
}

func (c Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("market22: missing product id")
	}
	var resp productResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/products/"+escapeID(id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Product.ID == "" {
		return nil, fmt.Errorf("market22: product %s missing from response", id)
	}
	return &resp.Product, nil
}
