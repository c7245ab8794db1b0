package model

import (
	"encoding/json"
	"testing"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{"", false},
		{" ", true},
		{"Star Health", true},
		{0.0, false},
		{500000.0, true},
		{false, false},
		{json.Number("0"), false},
		{[]any{}, false},
		{[]any{"x"}, true},
	}
	for _, tt := range tests {
		if got := Truthy(tt.in); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormFields_Filled(t *testing.T) {
	f := FormFields{"patient_name": " ", "policy_number": ""}
	if !f.Filled("patient_name") {
		t.Error("whitespace-only value should count as filled")
	}
	if f.Filled("policy_number") || f.Filled("insurer") {
		t.Error("empty and absent values should not count as filled")
	}
}
