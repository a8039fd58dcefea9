package api

import (
	"time"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

// StatusResponse is the full entitlement view returned to the application
// shell. Access fields come from the evaluated status, not the stored row, so
// an expired entitlement reads as locked even before any writer notices.
type StatusResponse struct {
	StoreID   string          `json:"store_id"`
	Granted   bool            `json:"acesso_liberado"`
	Message   string          `json:"mensagem"`
	PlanName  string          `json:"plano_nome,omitempty"`
	PlanType  acesso.PlanType `json:"plano_tipo,omitempty"`
	AccessEnd *time.Time      `json:"data_fim_acesso,omitempty"`
	Origin    acesso.Origin   `json:"origem,omitempty"`
	Renewable bool            `json:"renovavel"`
}

// RouteDecisionResponse tells the frontend where a navigation should land.
// An empty RedirectTo means the requested path may be rendered.
type RouteDecisionResponse struct {
	Path       string `json:"path"`
	Proceed    bool   `json:"proceed"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error string `json:"error"`
}
