package acesso

import "strings"

// ResolvedPlan is the canonical outcome of mapping a provider plan identifier.
// DurationDays of zero means the plan never expires.
type ResolvedPlan struct {
	DurationDays int
	PlanName     string
	PlanType     PlanType
}

// Display names shown to store owners. The stored contract is Portuguese.
const (
	planNameTrial     = "Período de Teste"
	planNameSemanal   = "Plano Semanal"
	planNameMensal    = "Plano Mensal"
	planNameAnual     = "Plano Anual"
	planNameVitalicio = "Plano Vitalício"
)

// ResolvePlan maps a provider's opaque plan identifier to a canonical plan.
// Identifiers arrive in English or Portuguese, case-insensitively; both forms
// resolve to the same PlanType. An unrecognized non-empty identifier resolves
// to the 7-day trial rather than failing: a granting event must always
// terminate in a valid entitlement state, never leave the store in limbo.
// Only an empty identifier is an error (ErrUnknownPlan).
//
// ResolvePlan is pure and performs no I/O. It is only invoked for granting
// event types; the webhook dispatch decides whether an event grants at all.
func ResolvePlan(rawPlanID string) (ResolvedPlan, error) {
	id := strings.ToLower(strings.TrimSpace(rawPlanID))
	if id == "" {
		return ResolvedPlan{}, ErrUnknownPlan
	}

	switch id {
	case "weekly", "semanal":
		return ResolvedPlan{DurationDays: 7, PlanName: planNameSemanal, PlanType: PlanSemanal}, nil
	case "monthly", "mensal":
		return ResolvedPlan{DurationDays: 30, PlanName: planNameMensal, PlanType: PlanMensal}, nil
	case "yearly", "annual", "anual":
		return ResolvedPlan{DurationDays: 365, PlanName: planNameAnual, PlanType: PlanAnual}, nil
	case "lifetime", "vitalicio", "vitalício":
		return ResolvedPlan{DurationDays: 0, PlanName: planNameVitalicio, PlanType: PlanVitalicio}, nil
	case "trial", "teste":
		return ResolvedPlan{DurationDays: 7, PlanName: planNameTrial, PlanType: PlanTrial}, nil
	}

	// Safe fallback: trial-equivalent window keeps the granting path alive
	// while operators investigate the unmapped identifier.
	return ResolvedPlan{DurationDays: 7, PlanName: planNameTrial, PlanType: PlanTrial}, nil
}

// TrialPlan returns the canonical trial grant used by onboarding.
func TrialPlan() ResolvedPlan {
	return ResolvedPlan{DurationDays: 7, PlanName: planNameTrial, PlanType: PlanTrial}
}

// PlanForType builds a ResolvedPlan for a canonical plan code. Used by the
// admin override surface, where the caller supplies the type directly.
func PlanForType(planType PlanType) ResolvedPlan {
	switch planType {
	case PlanSemanal:
		return ResolvedPlan{DurationDays: 7, PlanName: planNameSemanal, PlanType: PlanSemanal}
	case PlanMensal:
		return ResolvedPlan{DurationDays: 30, PlanName: planNameMensal, PlanType: PlanMensal}
	case PlanAnual:
		return ResolvedPlan{DurationDays: 365, PlanName: planNameAnual, PlanType: PlanAnual}
	case PlanVitalicio:
		return ResolvedPlan{DurationDays: 0, PlanName: planNameVitalicio, PlanType: PlanVitalicio}
	default:
		return TrialPlan()
	}
}
