package economy

import "testing"

func TestValidateFee_TitaniumRates(t *testing.T) {
	s := Stock{Titanium: Ledger{Count: 4}}

	if err := ValidateFee(s, 12, Fee{Titanium: 4}, PaymentRates(false, true, TitaniumRate, false)); err != nil {
		t.Fatalf("4 titanium at rate 3 should cover 12: %v", err)
	}
	phobolog := PaymentRates(false, true, PhobologTitanium, false)
	if err := ValidateFee(s, 12, Fee{Titanium: 3}, phobolog); err != nil {
		t.Fatalf("3 titanium at rate 4 should cover 12: %v", err)
	}
	if err := ValidateFee(s, 12, Fee{Titanium: 2}, phobolog); err == nil {
		t.Fatalf("2 titanium at rate 4 should not cover 12")
	}
}

func TestValidateFee_Rejections(t *testing.T) {
	s := Stock{Credits: Ledger{Count: 10}, Steel: Ledger{Count: 3}, Heat: Ledger{Count: 5}}
	building := PaymentRates(true, false, TitaniumRate, false)

	if err := ValidateFee(s, 10, Fee{Credits: 4, Steel: 3}, building); err != nil {
		t.Fatalf("steel on building: %v", err)
	}
	if err := ValidateFee(s, 10, Fee{Credits: 4, Steel: 3}, PaymentRates(false, false, TitaniumRate, false)); err == nil {
		t.Fatalf("steel accepted on non-building project")
	}
	if err := ValidateFee(s, 10, Fee{Credits: 5, Heat: 5}, building); err == nil {
		t.Fatalf("heat accepted without heat-as-credits")
	}
	if err := ValidateFee(s, 10, Fee{Credits: 5, Heat: 5}, PaymentRates(false, false, 0, true)); err != nil {
		t.Fatalf("heat as credits: %v", err)
	}
	if err := ValidateFee(s, 5, Fee{Credits: 11}, building); err == nil {
		t.Fatalf("fee above stock accepted")
	}
	if err := ValidateFee(s, 5, Fee{Credits: 6, Steel: -1}, building); err == nil {
		t.Fatalf("negative amount accepted")
	}
}

func TestDebitAfterValidate(t *testing.T) {
	s := Stock{Credits: Ledger{Count: 10}, Steel: Ledger{Count: 3}}
	fee := Fee{Credits: 4, Steel: 3}
	if err := ValidateFee(s, 10, fee, PaymentRates(true, false, 0, false)); err != nil {
		t.Fatalf("validate: %v", err)
	}
	Debit(&s, fee)
	if s.Credits.Count != 6 || s.Steel.Count != 0 {
		t.Fatalf("after debit: credits=%d steel=%d", s.Credits.Count, s.Steel.Count)
	}
}

func TestPotentialAndRemove(t *testing.T) {
	s := Stock{Credits: Ledger{Count: 5}, Steel: Ledger{Count: 2}, Titanium: Ledger{Count: 1}}
	if got := Potential(s, PaymentRates(true, true, PhobologTitanium, false)); got != 5+4+4 {
		t.Fatalf("potential: got %d", got)
	}
	if got := s.Remove(Steel, 5); got != 2 || s.Steel.Count != 0 {
		t.Fatalf("remove clamps: removed=%d left=%d", got, s.Steel.Count)
	}
	if err := s.Spend(Credits, 6); err == nil || s.Credits.Count != 5 {
		t.Fatalf("spend beyond stock must fail without change")
	}
	var c CardResources
	if c.Get(Animals) != 0 {
		t.Fatalf("nil card resources must read zero")
	}
}
