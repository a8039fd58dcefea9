package hotmart

import (
	"errors"
	"testing"

	"github.com/vendafacil/goacesso/pkg/billing"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Reference
		wantErr error
	}{
		{
			name: "full triple",
			raw:  "store123|mensal|user456",
			want: Reference{StoreID: "store123", PlanID: "mensal", UserID: "user456"},
		},
		{
			name: "store and plan only",
			raw:  "store123|mensal",
			want: Reference{StoreID: "store123", PlanID: "mensal"},
		},
		{
			name: "store only",
			raw:  "store123",
			want: Reference{StoreID: "store123"},
		},
		{
			name: "whitespace trimmed per segment",
			raw:  " store123 | mensal | user456 ",
			want: Reference{StoreID: "store123", PlanID: "mensal", UserID: "user456"},
		},
		{
			name: "extra segments ignored",
			raw:  "store123|mensal|user456|campanha-verao",
			want: Reference{StoreID: "store123", PlanID: "mensal", UserID: "user456"},
		},
		{
			name:    "empty is missing",
			raw:     "",
			wantErr: billing.ErrMissingReference,
		},
		{
			name:    "blank is missing",
			raw:     "   ",
			wantErr: billing.ErrMissingReference,
		},
		{
			name:    "empty store id is invalid",
			raw:     "|mensal|user456",
			wantErr: billing.ErrInvalidReference,
		},
		{
			name:    "pipes only is invalid",
			raw:     "||",
			wantErr: billing.ErrInvalidReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseReference(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReference(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseReference(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}
