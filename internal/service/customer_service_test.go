package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/Cheertaboi/referral-service/internal/apperr"
	"github.com/Cheertaboi/referral-service/internal/models"
)

func TestCreateCustomerAssignsCode(t *testing.T) {
	h := newHarness()
	c, result, err := h.customers.Create(context.Background(), models.CustomerInput{
		FirstName: models.String(" Clara "),
		LastName:  models.String("Client"),
		Email:     models.String("clara@example.com"),
		Price:     models.Float(1200),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.ReferralApplied {
		t.Error("no reference, no redemption")
	}
	if c.FirstName != "Clara" {
		t.Errorf("expected trimmed name, got %q", c.FirstName)
	}
	if len(c.MyReferralCode) != referralCodeLen {
		t.Errorf("expected %d char code, got %q", referralCodeLen, c.MyReferralCode)
	}
	if c.ReferralCount != 0 || c.DiscountRate != nil {
		t.Errorf("new customer must start without referrals: %+v", c)
	}
	if c.FinalPrice == nil || *c.FinalPrice != 1200 {
		t.Errorf("expected final price 1200, got %v", c.FinalPrice)
	}
	if _, err := uuid.Parse(c.ID); err != nil {
		t.Errorf("expected uuid id, got %q", c.ID)
	}
	if id, ok := h.codes.Get(context.Background(), c.MyReferralCode); !ok || id != c.ID {
		t.Error("new code should be cached in the registry")
	}
}

func TestCreateCustomerRetriesCodeCollision(t *testing.T) {
	h := newHarness()
	h.seed(models.Customer{ID: uuid.NewString(), FirstName: "X", LastName: "Y", MyReferralCode: "TAKEN000"})

	codes := []string{"TAKEN000", "TAKEN000", "FRESH000"}
	h.customers.newCode = func() string {
		c := codes[0]
		codes = codes[1:]
		return c
	}

	c, _, err := h.customers.Create(context.Background(), models.CustomerInput{
		FirstName: models.String("Dora"),
		LastName:  models.String("Dup"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.MyReferralCode != "FRESH000" {
		t.Errorf("expected FRESH000, got %s", c.MyReferralCode)
	}
}

func TestCreateCustomerCodeExhausted(t *testing.T) {
	h := newHarness()
	h.seed(models.Customer{ID: uuid.NewString(), FirstName: "X", LastName: "Y", MyReferralCode: "TAKEN000"})
	h.customers.newCode = func() string { return "TAKEN000" }

	_, _, err := h.customers.Create(context.Background(), models.CustomerInput{
		FirstName: models.String("Dora"),
		LastName:  models.String("Dup"),
	})
	assertKind(t, err, apperr.KindConflict)
}

func TestCreateCustomerValidation(t *testing.T) {
	h := newHarness()
	tests := []struct {
		name string
		in   models.CustomerInput
	}{
		{"missing names", models.CustomerInput{Email: models.String("x@example.com")}},
		{"blank last name", models.CustomerInput{FirstName: models.String("A"), LastName: models.String("  ")}},
		{"bad email", models.CustomerInput{FirstName: models.String("A"), LastName: models.String("B"), Email: models.String("not-an-email")}},
		{"negative price", models.CustomerInput{FirstName: models.String("A"), LastName: models.String("B"), Price: models.Float(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := h.customers.Create(context.Background(), tt.in)
			assertKind(t, err, apperr.KindValidation)
		})
	}
}

func TestGetUpdateDeleteUnknownCustomer(t *testing.T) {
	h := newHarness()
	for _, id := range []string{"not-a-uuid", uuid.NewString()} {
		if _, err := h.customers.Get(context.Background(), id); apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("get %s: expected not found, got %v", id, err)
		}
		if _, _, err := h.customers.Update(context.Background(), id, models.CustomerInput{}); apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("update %s: expected not found, got %v", id, err)
		}
		if err := h.customers.Delete(context.Background(), id); apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("delete %s: expected not found, got %v", id, err)
		}
	}
}

func TestDeleteForgetsReferralCode(t *testing.T) {
	h := newHarness()
	c, _, err := h.customers.Create(context.Background(), models.CustomerInput{
		FirstName: models.String("Eve"),
		LastName:  models.String("Gone"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := h.customers.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := h.codes.Get(context.Background(), c.MyReferralCode); ok {
		t.Error("deleted customer's code must leave the cache")
	}
	_, err = h.referrals.ValidateReferral(context.Background(), models.ValidationRequest{ReferralCode: c.MyReferralCode})
	assertKind(t, err, apperr.KindNotFound)
}

func TestListCustomersPaging(t *testing.T) {
	h := newHarness()
	for i := 0; i < 5; i++ {
		if _, _, err := h.customers.Create(context.Background(), models.CustomerInput{
			FirstName: models.String("Page"),
			LastName:  models.String(string(rune('A' + i))),
		}); err != nil {
			t.Fatal(err)
		}
	}

	p, err := h.customers.List(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if p.Count != 5 || len(p.Results) != 2 {
		t.Fatalf("unexpected page %+v", p)
	}
	if p.Results[0].LastName != "E" {
		t.Errorf("expected newest first, got %s", p.Results[0].LastName)
	}
	if p.Next != "/admin/customers?page=2&size=2" || p.Previous != "" {
		t.Errorf("unexpected links next=%q prev=%q", p.Next, p.Previous)
	}

	p, err = h.customers.List(context.Background(), 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Results) != 1 || p.Next != "" || p.Previous != "/admin/customers?page=2&size=2" {
		t.Errorf("unexpected last page %+v", p)
	}

	p, err = h.customers.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Page != 1 || p.Size != defaultPageSize {
		t.Errorf("expected defaults, got page=%d size=%d", p.Page, p.Size)
	}

	_, err = h.customers.List(context.Background(), 1, 101)
	assertKind(t, err, apperr.KindValidation)
	_, err = h.customers.List(context.Background(), -1, 10)
	assertKind(t, err, apperr.KindValidation)
}

func TestCustomerReferrals(t *testing.T) {
	h := newHarness()
	a := h.seed(referrerA(0, models.Float(1000)))
	pendingTx(t, h, a)
	pendingTx(t, h, a)

	txs, err := h.customers.Referrals(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("referrals: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(txs))
	}
	if txs[0].DiscountRate != 6 || txs[1].DiscountRate != 3 {
		t.Errorf("expected newest first (6 then 3), got %d, %d", txs[0].DiscountRate, txs[1].DiscountRate)
	}
}
