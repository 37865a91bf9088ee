package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/qifin/lotledger/internal/api/request"
	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
	"github.com/qifin/lotledger/internal/testutil"
)

// TestReferenceService_CreateSecurity tests security creation and the
// deterministic id scheme.
//
// WHY: Security ids are content hashes of the symbol, so creating the same
// symbol on two machines yields the same id and imported data lines up.
func TestReferenceService_CreateSecurity(t *testing.T) {
	t.Run("derives id from symbol", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReferenceService(t, db)

		security, err := svc.CreateSecurity(request.CreateSecurityRequest{Symbol: "AAPL", Name: "Apple"})
		if err != nil {
			t.Fatalf("CreateSecurity() returned unexpected error: %v", err)
		}
		if security.ID != model.SecurityID("AAPL") {
			t.Errorf("Expected content-hash id %s, got %s", model.SecurityID("AAPL"), security.ID)
		}
	})

	t.Run("name defaults to symbol", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReferenceService(t, db)

		security, err := svc.CreateSecurity(request.CreateSecurityRequest{Symbol: "MSFT"})
		if err != nil {
			t.Fatalf("CreateSecurity() returned unexpected error: %v", err)
		}
		if security.Name != "MSFT" {
			t.Errorf("Expected name defaulted to symbol, got %q", security.Name)
		}
	})

	t.Run("rejects missing symbol", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReferenceService(t, db)

		_, err := svc.CreateSecurity(request.CreateSecurityRequest{Name: "No Symbol"})
		if !errors.Is(err, apperrors.ErrMissingRequiredField) {
			t.Errorf("Expected ErrMissingRequiredField, got %v", err)
		}
	})
}

// TestReferenceService_CreateAccount tests account creation.
func TestReferenceService_CreateAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestReferenceService(t, db)

	t.Run("creates and resolves", func(t *testing.T) {
		account, err := svc.CreateAccount(request.CreateAccountRequest{
			Name: "Brokerage", AccountType: "investment",
		})
		if err != nil {
			t.Fatalf("CreateAccount() returned unexpected error: %v", err)
		}

		stored, err := svc.GetAccount(account.ID)
		if err != nil {
			t.Fatalf("GetAccount() returned unexpected error: %v", err)
		}
		if stored.Name != "Brokerage" || stored.AccountType != "investment" {
			t.Errorf("Expected stored account to match, got %+v", stored)
		}
	})

	t.Run("rejects missing name", func(t *testing.T) {
		_, err := svc.CreateAccount(request.CreateAccountRequest{AccountType: "investment"})
		if !errors.Is(err, apperrors.ErrMissingRequiredField) {
			t.Errorf("Expected ErrMissingRequiredField, got %v", err)
		}
	})

	t.Run("unknown id resolves to not found", func(t *testing.T) {
		_, err := svc.GetAccount("no-such-account")
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			t.Errorf("Expected ErrAccountNotFound, got %v", err)
		}
	})
}

// TestPriceService tests price entry and latest-on-or-before lookup.
//
// WHY: Valuation depends on "latest price on or before the date"; the lookup
// must pick the right record and report absence as ErrPriceNotFound.
func TestPriceService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestPriceService(t, db)

	security := testutil.NewSecurity().Build(t, db)

	for _, p := range []struct {
		date  string
		price float64
	}{
		{"2024-01-10", 100},
		{"2024-01-20", 110},
		{"2024-02-05", 95},
	} {
		if _, err := svc.CreatePrice(request.CreatePriceRequest{
			SecurityID: security.ID, Date: p.date, Price: p.price,
		}); err != nil {
			t.Fatalf("CreatePrice() returned unexpected error: %v", err)
		}
	}

	t.Run("exact date match", func(t *testing.T) {
		price, err := svc.LatestPriceOnOrBefore(security.ID, testutil.Date(2024, time.January, 20))
		if err != nil {
			t.Fatalf("LatestPriceOnOrBefore() returned unexpected error: %v", err)
		}
		if price.Price != 110 {
			t.Errorf("Expected price 110, got %v", price.Price)
		}
	})

	t.Run("falls back to prior date", func(t *testing.T) {
		price, err := svc.LatestPriceOnOrBefore(security.ID, testutil.Date(2024, time.February, 1))
		if err != nil {
			t.Fatalf("LatestPriceOnOrBefore() returned unexpected error: %v", err)
		}
		if price.Price != 110 {
			t.Errorf("Expected price 110 from January 20, got %v", price.Price)
		}
	})

	t.Run("nothing before the date", func(t *testing.T) {
		_, err := svc.LatestPriceOnOrBefore(security.ID, testutil.Date(2024, time.January, 1))
		if !errors.Is(err, apperrors.ErrPriceNotFound) {
			t.Errorf("Expected ErrPriceNotFound, got %v", err)
		}
	})

	t.Run("rejects unknown security", func(t *testing.T) {
		_, err := svc.CreatePrice(request.CreatePriceRequest{
			SecurityID: "no-such-security", Date: "2024-01-10", Price: 100,
		})
		if !errors.Is(err, apperrors.ErrSecurityNotFound) {
			t.Errorf("Expected ErrSecurityNotFound, got %v", err)
		}
	})

	t.Run("prices come back in date order", func(t *testing.T) {
		prices, err := svc.GetPrices(security.ID)
		if err != nil {
			t.Fatalf("GetPrices() returned unexpected error: %v", err)
		}
		if len(prices) != 3 {
			t.Fatalf("Expected 3 prices, got %d", len(prices))
		}
		for i := 1; i < len(prices); i++ {
			if prices[i].Date.Before(prices[i-1].Date) {
				t.Errorf("Expected ascending dates, got %v before %v", prices[i-1].Date, prices[i].Date)
			}
		}
	})
}
