package acesso

import "time"

// User-facing messages returned with an AccessStatus.
const (
	msgLiberado    = "Acesso liberado"
	msgExpirado    = "Seu período de acesso expirou. Renove seu plano para continuar."
	msgBloqueado   = "Acesso bloqueado. Entre em contato com o suporte ou renove seu plano."
	msgAguardando  = "Pagamento em processamento. Seu acesso será liberado em instantes."
	msgSemRegistro = "Nenhum plano ativo encontrado para esta loja."
)

// Evaluate derives the current access status from a stored entitlement record
// and the given instant. It is side-effect-free: detecting an expired window
// does not mutate the stored Status field, expiry is purely a read-time
// computation. Callers must use the returned Granted flag for access
// decisions, never the stored AccessState directly.
//
// A nil access record is its own state: not granted, with a distinct message.
func Evaluate(access *StoreAccess, now time.Time) AccessStatus {
	if access == nil {
		return AccessStatus{Granted: false, Message: msgSemRegistro}
	}

	status := AccessStatus{
		AccessEnd: access.AccessEnd,
		PlanName:  access.PlanName,
		PlanType:  access.PlanType,
	}

	switch access.Status {
	case StateAtivo:
		if access.AccessEnd == nil || access.AccessEnd.After(now) {
			status.Granted = true
			status.Message = msgLiberado
			return status
		}
		status.Message = msgExpirado
		return status
	case StateAguardandoLiberacao:
		status.Message = msgAguardando
		return status
	case StateExpirado:
		status.Message = msgExpirado
		return status
	default: // bloqueado and anything unrecognized
		status.Message = msgBloqueado
		return status
	}
}
