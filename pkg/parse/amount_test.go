package parse

import "testing"

func TestParseMinor(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"3.50", 350},
		{"1.50", 150},
		{"0.85", 85},
		{"10.000,00", 1000000},
		{"7,500.00", 750000},
		{"1234", 123400},
		{"Rp600.000", 60000000},
		{"$1,234.56", 123456},
	}
	for _, c := range cases {
		got, err := ParseMinor(c.in)
		if err != nil {
			t.Fatalf("ParseMinor(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseMinorRejectsEmpty(t *testing.T) {
	if _, err := ParseMinor("   "); err == nil {
		t.Fatal("expected error for blank token")
	}
}

func TestFindAmountsOrder(t *testing.T) {
	got := findAmounts("2 x Apple 1.00 2.00")
	if len(got) != 2 {
		t.Fatalf("expected 2 amounts, got %d: %+v", len(got), got)
	}
	if got[0].minor != 100 || got[1].minor != 200 {
		t.Fatalf("unexpected amounts: %+v", got)
	}
	if got[0].start >= got[1].start {
		t.Fatalf("amounts out of order: %+v", got)
	}
}

func TestFindAmountsSkipsPhoneAndAddress(t *testing.T) {
	if got := findAmounts("TEL 0812345678"); len(got) != 0 {
		t.Fatalf("phone number matched as amount: %+v", got)
	}
	if got := findAmounts("123 Main Street"); len(got) != 0 {
		t.Fatalf("street number matched as amount: %+v", got)
	}
}

func TestRepairDigits(t *testing.T) {
	if got := repairDigits("1O.5O"); got != "10.50" {
		t.Fatalf("repairDigits = %q", got)
	}
	// Letters with no digit neighbors stay untouched.
	if got := repairDigits("Oatmeal Soap"); got != "Oatmeal Soap" {
		t.Fatalf("repairDigits mangled text: %q", got)
	}
	if len(repairDigits("S1ice")) != len("S1ice") {
		t.Fatal("repairDigits must preserve length")
	}
}
