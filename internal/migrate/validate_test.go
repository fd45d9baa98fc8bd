package migrate

import (
	"errors"
	"testing"
)

func TestParseMemories(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr error
	}{
		{name: "valid pair", raw: legacyMemories, wantLen: 2},
		{name: "empty array", raw: `[]`, wantLen: 0},
		{name: "not json", raw: `oops`, wantErr: ErrBadMemories},
		{name: "not an array", raw: `{"id":"x"}`, wantErr: ErrBadMemories},
		{
			name:    "element missing id",
			raw:     `[{"content":"x","type":"Goals","createdAt":"2026-01-01T00:00:00Z"}]`,
			wantErr: ErrBadMemories,
		},
		{
			name:    "element missing content",
			raw:     `[{"id":"a","type":"Goals","createdAt":"2026-01-01T00:00:00Z"}]`,
			wantErr: ErrBadMemories,
		},
		{
			name:    "unknown type",
			raw:     `[{"id":"a","content":"x","type":"Dreams","createdAt":"2026-01-01T00:00:00Z"}]`,
			wantErr: ErrBadMemories,
		},
		{
			name:    "bad timestamp",
			raw:     `[{"id":"a","content":"x","type":"Goals","createdAt":"yesterday"}]`,
			wantErr: ErrBadMemories,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMemories(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestParseCanvas(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid", raw: `{"name":"Acme","items":[]}`},
		{name: "empty name still present", raw: `{"name":"","items":[]}`},
		{name: "missing name", raw: `{"items":[]}`, wantErr: true},
		{name: "missing items", raw: `{"name":"Acme"}`, wantErr: true},
		{name: "not json", raw: `nope`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCanvas(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrBadCanvas) {
					t.Fatalf("err = %v, want ErrBadCanvas", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if got.ID != "main_canvas" {
				t.Errorf("ID = %q, want reserved singleton id", got.ID)
			}
		})
	}
}

func TestParseFinancialInputs(t *testing.T) {
	inputs, err := parseFinancialInputs(`{"initialInvestment":5000,"salaries":2000}`)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if inputs.InitialInvestment != 5000 || inputs.Salaries != 2000 {
		t.Errorf("inputs = %+v", inputs)
	}

	for _, raw := range []string{`null`, `42`, `"text"`, `[1,2]`, `broken`} {
		if _, err := parseFinancialInputs(raw); !errors.Is(err, ErrBadInputs) {
			t.Errorf("parseFinancialInputs(%q) err = %v, want ErrBadInputs", raw, err)
		}
	}
}

func TestParseTheme(t *testing.T) {
	for _, ok := range []string{"light", "dark"} {
		got, err := parseTheme(ok)
		if err != nil || got != ok {
			t.Errorf("parseTheme(%q) = %q, %v", ok, got, err)
		}
	}
	for _, bad := range []string{"", "blue", "DARK", `"dark"`} {
		if _, err := parseTheme(bad); !errors.Is(err, ErrBadTheme) {
			t.Errorf("parseTheme(%q) err = %v, want ErrBadTheme", bad, err)
		}
	}
}
