package datasource

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseObservation(t *testing.T) {
	p, err := parseObservation(sgsObservation{Data: "02/01/2025", Valor: "10.75"})
	if err != nil {
		t.Fatalf("parseObservation: %v", err)
	}
	if p.Value != 10.75 {
		t.Errorf("value = %v, want 10.75", p.Value)
	}
	want := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	if !p.Date.Equal(want) {
		t.Errorf("date = %v, want %v", p.Date, want)
	}
}

func TestParseObservationDecimalComma(t *testing.T) {
	p, err := parseObservation(sgsObservation{Data: "15/08/2025", Valor: "5,27"})
	if err != nil {
		t.Fatalf("parseObservation: %v", err)
	}
	if p.Value != 5.27 {
		t.Errorf("value = %v, want 5.27", p.Value)
	}
}

func TestParseObservationRejectsGarbage(t *testing.T) {
	if _, err := parseObservation(sgsObservation{Data: "not-a-date", Valor: "1"}); err == nil {
		t.Error("expected date error")
	}
	if _, err := parseObservation(sgsObservation{Data: "02/01/2025", Valor: ""}); err == nil {
		t.Error("expected value error")
	}
}

// The SGS API returns values as JSON strings, not numbers. Guards the
// struct tags against that shape.
func TestSGSDecoding(t *testing.T) {
	payload := `[
		{"data": "02/01/2025", "valor": "12.25"},
		{"data": "03/02/2025", "valor": "13.25"}
	]`

	var obs []sgsObservation
	if err := json.Unmarshal([]byte(payload), &obs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}
	p, err := parseObservation(obs[1])
	if err != nil {
		t.Fatalf("parseObservation: %v", err)
	}
	if p.Value != 13.25 {
		t.Errorf("value = %v, want 13.25", p.Value)
	}
}

func TestBCBName(t *testing.T) {
	b := NewBCB()
	if b.Name() != "Banco Central do Brasil" {
		t.Errorf("Name() = %q", b.Name())
	}
}
