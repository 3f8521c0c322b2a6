package httpx

import "testing"

type sessionForm struct {
	Date    string   `validate:"required,isodate"`
	Minutes int      `validate:"gte=0"`
	Status  string   `validate:"omitempty,shelf"`
	Stars   *float64 `validate:"omitempty,gte=0,lte=5,quarterstep"`
}

func f(v float64) *float64 { return &v }

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		form      sessionForm
		wantField string
	}{
		{"valid", sessionForm{Date: "2024-02-29", Minutes: 30, Status: "read", Stars: f(4.25)}, ""},
		{"missing date", sessionForm{Minutes: 10}, "date"},
		{"impossible date", sessionForm{Date: "2023-02-29"}, "date"},
		{"loose date", sessionForm{Date: "2023-2-1"}, "date"},
		{"negative minutes", sessionForm{Date: "2024-01-01", Minutes: -1}, "minutes"},
		{"unknown shelf", sessionForm{Date: "2024-01-01", Status: "finished"}, "status"},
		{"off grid stars", sessionForm{Date: "2024-01-01", Stars: f(3.3)}, "stars"},
		{"stars above scale", sessionForm{Date: "2024-01-01", Stars: f(6)}, "stars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := ValidateStruct(tt.form)
			if tt.wantField == "" {
				if len(details) != 0 {
					t.Fatalf("Expected no validation errors, got %v", details)
				}
				return
			}
			if len(details) != 1 {
				t.Fatalf("Expected 1 validation error, got %v", details)
			}
			if details[0].Field != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, details[0].Field)
			}
		})
	}
}
