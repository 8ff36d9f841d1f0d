package model

import (
	"testing"
)

func TestFieldNames(t *testing.T) {
	names := FieldNames()
	if len(names) != 17 {
		t.Fatalf("len(FieldNames()) = %d, want 17", len(names))
	}
	if names[0] != "effective_date" || names[3] != "pay_leg_notional" || names[16] != "rec_leg_fixed_rate_pct" {
		t.Errorf("FieldNames() order = %v", names)
	}

	names[0] = "mutated"
	if FieldNames()[0] != "effective_date" {
		t.Error("FieldNames() must return a copy")
	}
}

func TestOutputFieldAccess(t *testing.T) {
	o := NewOutput("OneStep", "1", Input{TradeGroup: "Sample", TradeID: "3", EntryText: "text"})

	for _, name := range FieldNames() {
		if err := o.SetField(name, name+"-v"); err != nil {
			t.Fatalf("SetField(%q) = %v", name, err)
		}
	}
	for _, name := range FieldNames() {
		if got := o.Field(name); got != name+"-v" {
			t.Errorf("Field(%q) = %q, want %q", name, got, name+"-v")
		}
	}
	if o.PayLegCcy != "pay_leg_ccy-v" || o.RecLegFloatSpreadBp != "rec_leg_float_spread_bp-v" {
		t.Error("SetField did not write the struct fields")
	}

	if err := o.SetField("entry_text", "x"); err == nil {
		t.Error("SetField(entry_text) should fail")
	}
	if got := o.Field("unknown"); got != "" {
		t.Errorf("Field(unknown) = %q, want empty", got)
	}

	want := OutputKey{Solution: "OneStep", TradeGroup: "Sample", TradeID: "3", TrialID: "1"}
	if o.Key() != want {
		t.Errorf("Key() = %+v, want %+v", o.Key(), want)
	}
}

func TestScoringPercent(t *testing.T) {
	score, max := 17, 34
	tests := []struct {
		name string
		s    Scoring
		want float64
	}{
		{"unscored", Scoring{}, 0},
		{"half", Scoring{Score: &score, MaxScore: &max}, 50},
	}
	for _, tt := range tests {
		if got := tt.s.Percent(); got != tt.want {
			t.Errorf("%s: Percent() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTradeNumber(t *testing.T) {
	if got := (Input{TradeID: "12"}).TradeNumber(); got != 12 {
		t.Errorf("TradeNumber() = %d, want 12", got)
	}
	if got := (Input{TradeID: "A"}).TradeNumber(); got != -1 {
		t.Errorf("TradeNumber() = %d, want -1", got)
	}
}
