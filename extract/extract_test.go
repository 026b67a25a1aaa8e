package extract

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseNumberTurkish(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"2.000,00", "2000.00"},
		{"500,44", "500.44"},
	}
	for _, tt := range tests {
		got, err := ParseNumber(tt.raw)
		if err != nil {
			t.Fatalf("ParseNumber(%q) error: %v", tt.raw, err)
		}
		want, _ := decimal.NewFromString(tt.want)
		if !got.Equal(want) {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.raw, got, want)
		}
	}
}

func TestParseNumberUS(t *testing.T) {
	got, err := ParseNumber("1,234.56")
	if err != nil {
		t.Fatal(err)
	}
	want, _ := decimal.NewFromString("1234.56")
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseNumberNegative(t *testing.T) {
	got, err := ParseNumber("(500,00)")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(decimal.NewFromInt(-500)) {
		t.Errorf("got %v, want -500", got)
	}
}

func TestParseNumberRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("3735.00")
	formatted := FormatAmount(d, "")
	got, err := ParseNumber(formatted)
	if err != nil {
		t.Fatalf("round trip parse error: %v", err)
	}
	if !got.Equal(d) {
		t.Errorf("round trip: got %v, want %v", got, d)
	}
}

func TestExtractAmountsCurrencySymbolAndCode(t *testing.T) {
	text := "Total: 2.458,30 EUR and also ₺1.234,56 due."
	amounts := ExtractAmounts("s1", text)
	if len(amounts) != 2 {
		t.Fatalf("expected 2 amounts, got %d: %+v", len(amounts), amounts)
	}
	foundEUR, foundTRY := false, false
	for _, a := range amounts {
		if a.Currency == "EUR" {
			foundEUR = true
		}
		if a.Currency == "TRY" {
			foundTRY = true
		}
	}
	if !foundEUR || !foundTRY {
		t.Errorf("expected EUR and TRY amounts, got %+v", amounts)
	}
}

func TestExtractAmountsTurkishInvoices(t *testing.T) {
	texts := []string{"1.234,56 TL", "2.000,00 TL", "500,44 TL"}
	want := []string{"1234.56", "2000.00", "500.44"}
	for i, text := range texts {
		amounts := ExtractAmounts("s", text)
		if len(amounts) != 1 {
			t.Fatalf("text %q: expected 1 amount, got %d", text, len(amounts))
		}
		wantDec, _ := decimal.NewFromString(want[i])
		if !amounts[0].Value.Equal(wantDec) {
			t.Errorf("text %q: got %v, want %v", text, amounts[0].Value, wantDec)
		}
		if amounts[0].Currency != "TRY" {
			t.Errorf("text %q: currency = %q, want TRY", text, amounts[0].Currency)
		}
	}
}

func TestExtractDatesBasic(t *testing.T) {
	text := "Issued 15.03.2024 and due 2024-04-01 or 01/05/2024"
	dates := ExtractDates("s1", text)
	if len(dates) != 3 {
		t.Fatalf("expected 3 dates, got %d: %+v", len(dates), dates)
	}
}

func TestExtractDatesRejectsImpossible(t *testing.T) {
	dates := ExtractDates("s1", "invalid date 31.02.2024 here")
	if len(dates) != 0 {
		t.Errorf("expected 0 dates for impossible date, got %+v", dates)
	}
}

func TestExtractDatesTwoDigitYear(t *testing.T) {
	dates := ExtractDates("s1", "dated 05.06.23")
	if len(dates) != 1 {
		t.Fatalf("expected 1 date, got %d", len(dates))
	}
	if dates[0].Value.Year() != 2023 {
		t.Errorf("expected year 2023, got %d", dates[0].Value.Year())
	}
}

func TestExtractInvoiceIDs(t *testing.T) {
	text := "Reference Invoice-13TVEI4D-0002.docx and INV-2024-001 and 2025/001"
	ids := ExtractInvoiceIDs("s1", text)
	found := map[string]bool{}
	for _, id := range ids {
		found[id.Canonical] = true
	}
	for _, want := range []string{"INV-2024-001", "2025/001"} {
		if !found[want] {
			t.Errorf("expected to find id %q in %+v", want, ids)
		}
	}
}

func TestFormatAmountTurkishGrouping(t *testing.T) {
	d := decimal.RequireFromString("3735")
	got := FormatAmount(d, "TRY")
	want := "3.735,00 TRY"
	if got != want {
		t.Errorf("FormatAmount = %q, want %q", got, want)
	}
}
