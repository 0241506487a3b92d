package database

import (
	"context"
	"fmt"

	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DefaultPaymentMethods are created on first start
func DefaultPaymentMethods() []entity.PaymentMethod {
	return []entity.PaymentMethod{
		{Name: "Cash", IsActive: true},
		{Name: "Debit card", SurchargePercent: decimal.RequireFromString("1.50"), IsActive: true},
		{Name: "Credit card", SurchargePercent: decimal.RequireFromString("3.50"), IsActive: true},
		{Name: "Pix", DiscountPercent: decimal.RequireFromString("5"), IsActive: true},
	}
}

// Seeder holds the repositories default data is written through, so the same
// seed runs against postgres and the in-memory store
type Seeder struct {
	Users          repository.UserRepository
	PaymentMethods repository.PaymentMethodRepository
	Log            *zap.Logger
}

// SeedDefaultData creates the payment methods and, when ADMIN_EMAIL and
// ADMIN_PASSWORD are set, the first admin account. Existing rows are kept.
func (s *Seeder) SeedDefaultData(ctx context.Context) error {
	s.Log.Info("seeding default data")

	for _, method := range DefaultPaymentMethods() {
		existing, err := s.PaymentMethods.GetByName(ctx, method.Name)
		if err != nil {
			return fmt.Errorf("failed to look up payment method %s: %w", method.Name, err)
		}
		if existing != nil {
			continue
		}
		m := method
		if err := s.PaymentMethods.Create(ctx, &m); err != nil {
			s.Log.Warn("failed to create payment method", zap.String("name", m.Name), zap.Error(err))
		}
	}

	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	adminName := viper.GetString("ADMIN_NAME")

	if adminEmail == "" || adminPassword == "" {
		s.Log.Info("default data seeding completed")
		return nil
	}

	existing, err := s.Users.GetByEmail(ctx, adminEmail)
	if err != nil {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	if existing != nil {
		s.Log.Info("admin user already exists", zap.String("email", adminEmail))
		return nil
	}

	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	if adminName == "" {
		adminName = "Administrator"
	}

	admin := &entity.User{
		Name:     adminName,
		Email:    adminEmail,
		Password: hashed,
		Role:     enum.UserRoleAdmin,
		IsActive: true,
	}
	if err := s.Users.Create(ctx, admin); err != nil {
		s.Log.Warn("failed to create admin user", zap.Error(err))
	} else {
		s.Log.Info("admin user created", zap.String("email", adminEmail))
	}

	s.Log.Info("default data seeding completed")
	return nil
}
