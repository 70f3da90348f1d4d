package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // valid UUIDv7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // valid UUIDv7 (uppercase)
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"123E4567-E89B-12D3-A456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",                                     // empty
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsNumeric(t *testing.T) {
	valid := []string{"123", "0", "9876543210"}
	invalid := []string{"abc", "123a", "", "-123"}
	for _, s := range valid {
		if !IsNumeric(s) {
			t.Errorf("IsNumeric(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsNumeric(s) {
			t.Errorf("IsNumeric(%q) = true, want false", s)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "period_month", Message: "invalid"},
		{Field: "basis", Message: "required"},
	}
	got := errs.Error()
	want := "period_month: invalid; basis: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "period_month", Message: "invalid"},
		{Field: "basis", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"period_month": "invalid", "basis": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestParseIntParam(t *testing.T) {
	cases := []struct {
		value   string
		def     int
		want    int
		wantErr bool
	}{
		{"", 7, 7, false},
		{"12", 0, 12, false},
		{"2024", 0, 2024, false},
		{"-1", 0, 0, true},
		{"june", 0, 0, true},
		{"99999999999999999999", 0, 0, true},
	}
	for _, c := range cases {
		got, verr := ParseIntParam("month", c.value, c.def)
		if c.wantErr {
			if verr == nil || verr.Field != "month" {
				t.Errorf("ParseIntParam(%q) error = %v, want validation error on month", c.value, verr)
			}
			continue
		}
		if verr != nil || got != c.want {
			t.Errorf("ParseIntParam(%q) = %d, %v, want %d", c.value, got, verr, c.want)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"00:00", "09:30", "17:00", "23:59"}
	invalid := []string{"24:00", "9:30", "09:60", "0930", ""}
	for _, v := range valid {
		if !IsValidClock(v) {
			t.Errorf("IsValidClock(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if IsValidClock(v) {
			t.Errorf("IsValidClock(%q) = true, want false", v)
		}
	}
}
