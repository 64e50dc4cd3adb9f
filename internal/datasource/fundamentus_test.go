package datasource

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestParseBRNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"1.234,56", 1234.56, true},
		{"32,50", 32.50, true},
		{"8,5%", 8.5, true},
		{"-12,40%", -12.40, true},
		{"0,00", 0, true},
		{"1.234.567", 1234567, true},
		{"", 0, false},
		{"-", 0, false},
		{"--", 0, false},
		{"N/A", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseBRNumber(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseBRNumber(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

// resultadoFixture mimics the fundamentus.com.br screener table layout:
// 21 columns, Brazilian number formats, percent columns with % signs.
const resultadoFixture = `
<table id="resultado">
<thead><tr><th>Papel</th><th>Cotação</th><th>P/L</th><th>P/VP</th><th>PSR</th>
<th>Div.Yield</th><th>P/Ativo</th><th>P/Cap.Giro</th><th>P/EBIT</th><th>P/Ativ Circ.Liq</th>
<th>EV/EBIT</th><th>EV/EBITDA</th><th>Mrg Ebit</th><th>Mrg. Líq.</th><th>Liq. Corr.</th>
<th>ROIC</th><th>ROE</th><th>Liq.2meses</th><th>Patrim. Líq</th><th>Dív.Brut/ Patrim.</th>
<th>Cresc. Rec.5a</th></tr></thead>
<tbody>
<tr>
<td>ITUB4</td><td>32,50</td><td>7,83</td><td>1,43</td><td>2,10</td>
<td>5,20%</td><td>0,10</td><td>0,00</td><td>5,00</td><td>0,00</td>
<td>6,00</td><td>5,50</td><td>30,0%</td><td>28,00%</td><td>1,50</td>
<td>18,0%</td><td>21,00%</td><td>1.500.000.000</td><td>180.000.000.000</td><td>0,85</td>
<td>8,00%</td>
</tr>
<tr>
<td>MGLU3</td><td>2,05</td><td>-12,40</td><td>0,90</td><td>0,20</td>
<td>-</td><td>0,30</td><td>1,10</td><td>-8,00</td><td>-0,50</td>
<td>-9,00</td><td>12,00</td><td>-1,0%</td><td>-2,50%</td><td>1,20</td>
<td>-1,0%</td><td>-8,00%</td><td>90.000.000</td><td>10.000.000.000</td><td>1,40</td>
<td>2,00%</td>
</tr>
</tbody>
</table>`

func TestParseResultTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resultadoFixture))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	rows := parseResultTable(doc)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	itub := rows[0]
	if itub.Ticker != "ITUB4" {
		t.Fatalf("ticker = %q", itub.Ticker)
	}
	if itub.Price != 32.50 {
		t.Errorf("price = %v, want 32.50", itub.Price)
	}
	if itub.Fund.PE == nil || *itub.Fund.PE != 7.83 {
		t.Errorf("P/L = %v, want 7.83", itub.Fund.PE)
	}
	if itub.Fund.PB == nil || *itub.Fund.PB != 1.43 {
		t.Errorf("P/VP = %v, want 1.43", itub.Fund.PB)
	}
	// Percent columns become decimals.
	if itub.Fund.DividendYield == nil || *itub.Fund.DividendYield != 0.052 {
		t.Errorf("DY = %v, want 0.052", itub.Fund.DividendYield)
	}
	if itub.Fund.ROE == nil || *itub.Fund.ROE != 0.21 {
		t.Errorf("ROE = %v, want 0.21", itub.Fund.ROE)
	}
	if itub.Fund.DebtToEquity == nil || *itub.Fund.DebtToEquity != 0.85 {
		t.Errorf("debt/equity = %v, want 0.85", itub.Fund.DebtToEquity)
	}

	// A dash cell stays nil, while a reported negative stays negative.
	mglu := rows[1]
	if mglu.Fund.DividendYield != nil {
		t.Errorf("dash DY should be nil, got %v", *mglu.Fund.DividendYield)
	}
	if mglu.Fund.PE == nil || *mglu.Fund.PE != -12.40 {
		t.Errorf("negative P/L = %v, want -12.40", mglu.Fund.PE)
	}
}

func TestParseResultTableIgnoresShortRows(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<table id="resultado"><tbody><tr><td>XXXX3</td><td>10,00</td></tr></tbody></table>`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if rows := parseResultTable(doc); len(rows) != 0 {
		t.Fatalf("truncated rows should be skipped, got %d", len(rows))
	}
}

func TestFundamentusName(t *testing.T) {
	f := NewFundamentus()
	if f.Name() != "Fundamentus" {
		t.Errorf("Name() = %q", f.Name())
	}
}
