package tableform

import "testing"

func TestValidators(t *testing.T) {
	tests := []struct {
		validator string
		value     string
		want      bool
	}{
		{"int", "12", true},
		{"int", "0", true},
		{"int", "12a", false},
		{"int", "-1", false},
		{"int", "", false},
		{"int", "1.5", false},

		{"float", "1.5", true},
		{"float", "15", true},
		{"float", ".5", true},
		{"float", "1.", false},
		{"float", "1.5x", false},
		{"float", "abc", false},

		{"versionnumber", "8.04", true},
		{"versionnumber", "12.10", true},
		{"versionnumber", "8.4", false},
		{"versionnumber", "123.04", false},

		{"versionname", "Hardy Heron", true},
		{"versionname", "hardy heron", false},
		{"versionname", "Hardy  Heron", false},
		{"versionname", "Hardy", false},
	}

	for _, tt := range tests {
		v, ok := LookupValidator(tt.validator)
		if !ok {
			t.Fatalf("LookupValidator(%q) not found", tt.validator)
		}
		if got := v.Valid(tt.value); got != tt.want {
			t.Errorf("%s.Valid(%q) = %v, want %v", tt.validator, tt.value, got, tt.want)
		}
	}
}

func TestValidator_NilAcceptsEverything(t *testing.T) {
	var v *Validator
	if !v.Valid("anything") {
		t.Error("nil validator rejected a value")
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in        string
		wantValue bool
		wantOK    bool
	}{
		{"true", true, true},
		{" YES ", true, true},
		{"1", true, true},
		{"false", false, true},
		{"n", false, true},
		{"0", false, true},
		{"", false, false},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		value, ok := ParseBool(tt.in)
		if value != tt.wantValue || ok != tt.wantOK {
			t.Errorf("ParseBool(%q) = (%v, %v), want (%v, %v)", tt.in, value, ok, tt.wantValue, tt.wantOK)
		}
	}
}
