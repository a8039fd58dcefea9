package hotmart

import (
	"fmt"
	"strings"

	"github.com/vendafacil/goacesso/pkg/billing"
)

// Reference is the internal correlation triple that checkout embeds in the
// purchase and Hotmart echoes back verbatim in every webhook. The wire format
// is a positional pipe-delimited string: "storeId|planId|userId". This is an
// external contract and cannot be changed on our side.
type Reference struct {
	StoreID string
	PlanID  string
	UserID  string
}

// ParseReference parses the external reference string. All pipe splitting is
// isolated here; handlers never touch the raw string.
//
// An empty string is ErrMissingReference. A non-empty string with an empty
// first segment is ErrInvalidReference: the store id is the one segment every
// mutating event needs. Missing trailing segments degrade to empty fields
// rather than failing, matching how older checkout links encoded only the
// store and plan.
func ParseReference(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Reference{}, billing.ErrMissingReference
	}

	parts := strings.Split(raw, "|")
	ref := Reference{StoreID: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		ref.PlanID = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		ref.UserID = strings.TrimSpace(parts[2])
	}

	if ref.StoreID == "" {
		return Reference{}, fmt.Errorf("%w: %q", billing.ErrInvalidReference, raw)
	}
	return ref, nil
}
