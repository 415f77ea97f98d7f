package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/havenlane/leasehold-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:    uuid.New(),
		Email: fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		Role:  role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProperty(tb testing.TB, ctx context.Context, tx *gorm.DB, landlordID uuid.UUID, status string) *types.Property {
	tb.Helper()
	p := &types.Property{
		ID:         uuid.New(),
		LandlordID: landlordID,
		Title:      "test property",
		Status:     status,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed property: %v", err)
	}
	return p
}

func SeedUnit(tb testing.TB, ctx context.Context, tx *gorm.DB, propertyID uuid.UUID, status string) *types.Unit {
	tb.Helper()
	u := &types.Unit{
		ID:         uuid.New(),
		PropertyID: propertyID,
		UnitNumber: "1A",
		Status:     status,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed unit: %v", err)
	}
	return u
}

func SeedContract(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID, landlordID, propertyID uuid.UUID, unitID *uuid.UUID, status string, rent float64) *types.Contract {
	tb.Helper()
	now := time.Now().UTC()
	c := &types.Contract{
		ID:           uuid.New(),
		PropertyID:   propertyID,
		UnitID:       unitID,
		TenantID:     tenantID,
		LandlordID:   landlordID,
		StartDate:    now,
		EndDate:      now.AddDate(1, 0, 0),
		RentAmount:   rent,
		PaymentCycle: "monthly",
		Status:       status,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed contract: %v", err)
	}
	return c
}
