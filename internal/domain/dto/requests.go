package dto

import "github.com/ougirez/supplytwin/internal/domain"

type ScenarioRequest struct {
	Name    string                 `json:"name" validate:"required"`
	Payload domain.ScenarioPayload `json:"payload"`
}

// ChartQuery is bound from the query string of the simulation read endpoints.
type ChartQuery struct {
	Output   string   `query:"output" validate:"omitempty,oneof=inventory production flow occurrence"`
	SKUs     []string `query:"sku"`
	Facility string   `query:"facility"`
	From     string   `query:"from"`
	To       string   `query:"to"`
	GroupBy  string   `query:"group_by" validate:"omitempty,oneof=sku facility"`
	Baseline string   `query:"baseline"`
}

type UpdateUserRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role" validate:"omitempty,oneof=user admin"`
	Plan *string `json:"plan" validate:"omitempty,min=1"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required"`
}

type CheckoutRequest struct {
	Plan  string `json:"plan" validate:"required"`
	Cycle string `json:"cycle" validate:"omitempty,oneof=monthly yearly"`
}

type URLResponse struct {
	URL string `json:"url"`
}

type OutputsResponse struct {
	RunID      string                `json:"run_id"`
	Outputs    []domain.OutputStatus `json:"outputs"`
	SKUs       []string              `json:"skus,omitempty"`
	Facilities []string              `json:"facilities,omitempty"`
}

type TableResponse struct {
	Header []string            `json:"header"`
	Rows   []map[string]string `json:"rows"`
}

func NewTableResponse(t *domain.Table) TableResponse {
	resp := TableResponse{Header: t.Header, Rows: make([]map[string]string, 0, len(t.Rows))}
	for _, r := range t.Rows {
		resp.Rows = append(resp.Rows, r.Map())
	}
	return resp
}
