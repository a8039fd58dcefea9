package acesso_test

import (
	"errors"
	"testing"

	"github.com/vendafacil/goacesso/pkg/acesso"
)

func TestResolvePlanDurations(t *testing.T) {
	tests := []struct {
		planID       string
		wantType     acesso.PlanType
		wantDuration int
	}{
		{"weekly", acesso.PlanSemanal, 7},
		{"semanal", acesso.PlanSemanal, 7},
		{"monthly", acesso.PlanMensal, 30},
		{"mensal", acesso.PlanMensal, 30},
		{"yearly", acesso.PlanAnual, 365},
		{"annual", acesso.PlanAnual, 365},
		{"anual", acesso.PlanAnual, 365},
		{"lifetime", acesso.PlanVitalicio, 0},
		{"vitalicio", acesso.PlanVitalicio, 0},
		{"vitalício", acesso.PlanVitalicio, 0},
		{"trial", acesso.PlanTrial, 7},
		{"teste", acesso.PlanTrial, 7},
	}

	for _, tt := range tests {
		t.Run(tt.planID, func(t *testing.T) {
			plan, err := acesso.ResolvePlan(tt.planID)
			if err != nil {
				t.Fatalf("ResolvePlan(%q) returned error: %v", tt.planID, err)
			}
			if plan.PlanType != tt.wantType {
				t.Errorf("PlanType = %q, want %q", plan.PlanType, tt.wantType)
			}
			if plan.DurationDays != tt.wantDuration {
				t.Errorf("DurationDays = %d, want %d", plan.DurationDays, tt.wantDuration)
			}
		})
	}
}

func TestResolvePlanEnglishPortugueseEquivalence(t *testing.T) {
	english, err := acesso.ResolvePlan("weekly")
	if err != nil {
		t.Fatalf("ResolvePlan(weekly) error: %v", err)
	}
	portuguese, err := acesso.ResolvePlan("semanal")
	if err != nil {
		t.Fatalf("ResolvePlan(semanal) error: %v", err)
	}
	if english != portuguese {
		t.Errorf("weekly resolved to %+v, semanal to %+v", english, portuguese)
	}
}

func TestResolvePlanCaseInsensitive(t *testing.T) {
	plan, err := acesso.ResolvePlan("  MENSAL  ")
	if err != nil {
		t.Fatalf("ResolvePlan error: %v", err)
	}
	if plan.PlanType != acesso.PlanMensal {
		t.Errorf("PlanType = %q, want %q", plan.PlanType, acesso.PlanMensal)
	}
}

func TestResolvePlanUnknownFallsBackToTrial(t *testing.T) {
	plan, err := acesso.ResolvePlan("oferta-desconhecida-2026")
	if err != nil {
		t.Fatalf("unknown plan should not error, got: %v", err)
	}
	if plan.PlanType != acesso.PlanTrial {
		t.Errorf("PlanType = %q, want trial fallback", plan.PlanType)
	}
	if plan.DurationDays != 7 {
		t.Errorf("DurationDays = %d, want 7", plan.DurationDays)
	}
}

func TestResolvePlanEmptyIsError(t *testing.T) {
	_, err := acesso.ResolvePlan("")
	if !errors.Is(err, acesso.ErrUnknownPlan) {
		t.Errorf("ResolvePlan(\"\") error = %v, want ErrUnknownPlan", err)
	}

	_, err = acesso.ResolvePlan("   ")
	if !errors.Is(err, acesso.ErrUnknownPlan) {
		t.Errorf("ResolvePlan(blank) error = %v, want ErrUnknownPlan", err)
	}
}

func TestPlanForType(t *testing.T) {
	plan := acesso.PlanForType(acesso.PlanVitalicio)
	if plan.DurationDays != 0 {
		t.Errorf("vitalicio DurationDays = %d, want 0", plan.DurationDays)
	}

	// Unknown codes degrade to the trial plan
	plan = acesso.PlanForType(acesso.PlanType("enterprise"))
	if plan.PlanType != acesso.PlanTrial {
		t.Errorf("PlanType = %q, want trial", plan.PlanType)
	}
}
