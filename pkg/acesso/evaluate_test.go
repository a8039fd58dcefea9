package acesso_test

import (
	"testing"
	"time"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

var evalNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func TestEvaluateNilRecord(t *testing.T) {
	status := acesso.Evaluate(nil, evalNow)
	if status.Granted {
		t.Error("nil record must not grant access")
	}
	if status.Message == "" {
		t.Error("nil record must carry a message")
	}
}

func TestEvaluateActiveWithFutureExpiry(t *testing.T) {
	access := &acesso.StoreAccess{
		StoreID:   "store123",
		PlanName:  "Plano Mensal",
		PlanType:  acesso.PlanMensal,
		Status:    acesso.StateAtivo,
		AccessEnd: timePtr(evalNow.Add(24 * time.Hour)),
	}

	status := acesso.Evaluate(access, evalNow)
	if !status.Granted {
		t.Error("active record with future expiry must grant access")
	}
	if status.PlanType != acesso.PlanMensal {
		t.Errorf("PlanType = %q, want mensal", status.PlanType)
	}
	if status.AccessEnd == nil || !status.AccessEnd.Equal(*access.AccessEnd) {
		t.Error("AccessEnd must be carried through")
	}
}

func TestEvaluateActiveWithoutExpiry(t *testing.T) {
	access := &acesso.StoreAccess{
		StoreID:  "store123",
		PlanType: acesso.PlanVitalicio,
		Status:   acesso.StateAtivo,
	}

	status := acesso.Evaluate(access, evalNow)
	if !status.Granted {
		t.Error("lifetime record must grant access")
	}
}

func TestEvaluateActiveButExpired(t *testing.T) {
	access := &acesso.StoreAccess{
		StoreID:   "store123",
		Status:    acesso.StateAtivo,
		AccessEnd: timePtr(evalNow.Add(-time.Minute)),
	}

	status := acesso.Evaluate(access, evalNow)
	if status.Granted {
		t.Error("stored ativo with past expiry must deny access")
	}
	// Read-time evaluation must not touch the stored record
	if access.Status != acesso.StateAtivo {
		t.Errorf("stored Status mutated to %q", access.Status)
	}
}

func TestEvaluateExpiryBoundary(t *testing.T) {
	// AccessEnd exactly at "now" is not After(now): access is denied
	access := &acesso.StoreAccess{
		StoreID:   "store123",
		Status:    acesso.StateAtivo,
		AccessEnd: timePtr(evalNow),
	}

	if status := acesso.Evaluate(access, evalNow); status.Granted {
		t.Error("expiry equal to now must deny access")
	}
}

func TestEvaluateNonActiveStates(t *testing.T) {
	tests := []struct {
		name  string
		state acesso.AccessState
	}{
		{"expirado", acesso.StateExpirado},
		{"bloqueado", acesso.StateBloqueado},
		{"aguardando_liberacao", acesso.StateAguardandoLiberacao},
		{"unrecognized", acesso.AccessState("algo_novo")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access := &acesso.StoreAccess{
				StoreID: "store123",
				Status:  tt.state,
				// Future expiry must not override a non-active state
				AccessEnd: timePtr(evalNow.Add(24 * time.Hour)),
			}
			status := acesso.Evaluate(access, evalNow)
			if status.Granted {
				t.Errorf("state %q must deny access", tt.state)
			}
			if status.Message == "" {
				t.Errorf("state %q must carry a message", tt.state)
			}
		})
	}
}

func TestEvaluateMessagesDiffer(t *testing.T) {
	expired := acesso.Evaluate(&acesso.StoreAccess{Status: acesso.StateExpirado}, evalNow)
	blocked := acesso.Evaluate(&acesso.StoreAccess{Status: acesso.StateBloqueado}, evalNow)
	waiting := acesso.Evaluate(&acesso.StoreAccess{Status: acesso.StateAguardandoLiberacao}, evalNow)

	if expired.Message == blocked.Message || blocked.Message == waiting.Message {
		t.Error("each denial state must explain itself with a distinct message")
	}
}
