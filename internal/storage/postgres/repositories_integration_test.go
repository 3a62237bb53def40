package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
	"github.com/vladislavdragonenkov/subscriptions/internal/platform"
)

func TestPlatformOrderRepository_PostgresFlow(t *testing.T) {
	store := openMigratedStore(t)
	repo := NewPlatformOrderRepository(store)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	record := platform.Record{
		Code:          "100000001",
		State:         domain.OrderStateNew,
		Status:        domain.OrderStatusPending,
		PaymentMethod: domain.PaymentMethodCreditCard,
		Customer:      domain.Customer{ID: "cus_1", Name: "Ana", Email: "ana@example.com"},
		Items: []platform.Item{{
			Code:        "sku-1",
			Description: "Coffee club",
			Quantity:    1,
			AmountMinor: 4990,
			Repetition:  &domain.Repetition{Interval: domain.IntervalMonth, IntervalCount: 1},
		}},
		Payments: []platform.PaymentInfo{{Method: domain.PaymentMethodCreditCard, AmountMinor: 4990, CardToken: "tok_1"}},
		Shipping: &domain.Shipping{AmountMinor: 500, RecipientName: "Ana"},
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, record); !errors.Is(err, domain.ErrPlatformOrderVersionConflict) {
		t.Fatalf("expected conflict on duplicate create, got %v", err)
	}

	got, err := repo.Get(ctx, record.Code)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Customer != record.Customer || len(got.Items) != 1 || got.Items[0].Repetition == nil {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Shipping == nil || got.Shipping.AmountMinor != 500 {
		t.Fatalf("shipping not restored: %+v", got.Shipping)
	}

	stale := got
	got.State = domain.OrderStateProcessing
	got.Status = domain.OrderStatusProcessing
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, stale); !errors.Is(err, domain.ErrPlatformOrderVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	saved, err := repo.Get(ctx, record.Code)
	if err != nil {
		t.Fatalf("get after save: %v", err)
	}
	if saved.Version != 1 || saved.Status != domain.OrderStatusProcessing {
		t.Fatalf("unexpected saved record: version=%d status=%s", saved.Version, saved.Status)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrPlatformOrderNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.Save(ctx, platform.Record{Code: "missing"}); !errors.Is(err, domain.ErrPlatformOrderNotFound) {
		t.Fatalf("expected not found on save, got %v", err)
	}
}

func TestSubscriptionRepository_PostgresFlow(t *testing.T) {
	store := openMigratedStore(t)
	repo := NewSubscriptionRepository(store)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older := domain.Subscription{
		ID:            "sub_old",
		Status:        domain.SubscriptionStatusActive,
		IntervalType:  domain.IntervalMonth,
		IntervalCount: 1,
		Metadata:      map[string]any{"id": "sub_old", "status": "active"},
		CreatedAt:     base,
		UpdatedAt:     base,
	}
	newer := domain.Subscription{
		ID:               "sub_new",
		Status:           domain.SubscriptionStatusPending,
		GatewayCreatedAt: base.Add(time.Minute),
		CreatedAt:        base.Add(time.Hour),
		UpdatedAt:        base.Add(time.Hour),
	}
	for _, sub := range []domain.Subscription{older, newer} {
		if err := repo.Save(ctx, sub); err != nil {
			t.Fatalf("save %s: %v", sub.ID, err)
		}
	}

	found, err := repo.Find(ctx, "sub_old")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Metadata["status"] != "active" || found.IntervalType != domain.IntervalMonth {
		t.Fatalf("unexpected subscription: %+v", found)
	}

	// Upsert: последняя запись побеждает, created_at сохраняется.
	found.Status = domain.SubscriptionStatusCanceled
	found.CreatedAt = base.Add(48 * time.Hour)
	if err := repo.Save(ctx, found); err != nil {
		t.Fatalf("resave: %v", err)
	}
	canceled, err := repo.Find(ctx, "sub_old")
	if err != nil {
		t.Fatalf("find after resave: %v", err)
	}
	if !canceled.IsCanceled() || !canceled.CreatedAt.Equal(base) {
		t.Fatalf("unexpected upsert result: %+v", canceled)
	}

	all, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != "sub_new" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	limited, err := repo.List(ctx, 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(limited))
	}

	if _, err := repo.Find(ctx, "missing"); !errors.Is(err, domain.ErrSubscriptionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecurrenceCatalog_PostgresFlow(t *testing.T) {
	store := openMigratedStore(t)
	catalog := NewRecurrenceCatalog(store)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	missing, err := catalog.RecurrenceProductByProductID(ctx, "sku-unknown")
	if err != nil || missing != nil {
		t.Fatalf("expected nil settings for unknown product, got %+v, %v", missing, err)
	}

	settings := domain.RecurrenceSettings{
		ProductID:   "sku-1",
		Cycles:      12,
		BillingType: domain.BillingTypePrepaid,
		Repetitions: []domain.Repetition{{Interval: domain.IntervalMonth, IntervalCount: 1}},
	}
	if err := catalog.UpsertRecurrenceProduct(ctx, settings); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	settings.Cycles = 6
	if err := catalog.UpsertRecurrenceProduct(ctx, settings); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := catalog.RecurrenceProductByProductID(ctx, "sku-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got == nil || got.Cycles != 6 || got.BillingType != domain.BillingTypePrepaid || len(got.Repetitions) != 1 {
		t.Fatalf("unexpected settings: %+v", got)
	}
}
