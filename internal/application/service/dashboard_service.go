package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// DashboardService provides front desk statistics
type DashboardService struct {
	comandaRepo repository.ComandaRepository
	clientRepo  repository.ClientRepository
	clock       Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	comandaRepo repository.ComandaRepository,
	clientRepo repository.ClientRepository,
	clock Clock,
) *DashboardService {
	return &DashboardService{
		comandaRepo: comandaRepo,
		clientRepo:  clientRepo,
		clock:       clock,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalClients  int64                      `json:"total_clients"`
	Today         *repository.ComandaSummary `json:"today"`
	Month         *repository.ComandaSummary `json:"month"`
	AverageTicket decimal.Decimal            `json:"average_ticket"`
	RevenueGrowth float64                    `json:"revenue_growth"`
	PreviousMonth decimal.Decimal            `json:"previous_month_revenue"`
	GeneratedAt   time.Time                  `json:"generated_at"`
}

// GetDashboardStats returns today's and this month's tab figures
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	now := s.clock()
	stats := &DashboardStats{GeneratedAt: now.UTC()}

	// Only the count is needed
	params := pagination.DefaultPagination()
	params.PerPage = 1
	_, clientCount, err := s.clientRepo.List(ctx, params, "")
	if err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}
	stats.TotalClients = clientCount

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)
	if stats.Today, err = s.comandaRepo.Summary(ctx, &dayStart, &dayEnd); err != nil {
		return nil, fmt.Errorf("today summary: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)
	if stats.Month, err = s.comandaRepo.Summary(ctx, &monthStart, &monthEnd); err != nil {
		return nil, fmt.Errorf("month summary: %w", err)
	}

	if stats.Month.ClosedCount > 0 {
		stats.AverageTicket = stats.Month.ClosedRevenue.
			Div(decimal.NewFromInt(stats.Month.ClosedCount)).
			Round(2)
	}

	prevStart := monthStart.AddDate(0, -1, 0)
	prevEnd := monthStart.Add(-time.Nanosecond)
	prev, err := s.comandaRepo.Summary(ctx, &prevStart, &prevEnd)
	if err != nil {
		return nil, fmt.Errorf("previous month summary: %w", err)
	}
	stats.PreviousMonth = prev.ClosedRevenue
	if prev.ClosedRevenue.IsPositive() {
		growth := stats.Month.ClosedRevenue.Sub(prev.ClosedRevenue).
			Div(prev.ClosedRevenue).
			Mul(decimal.NewFromInt(100))
		stats.RevenueGrowth = growth.Round(1).InexactFloat64()
	}

	return stats, nil
}
