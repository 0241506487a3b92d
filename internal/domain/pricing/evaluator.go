// Package pricing decides which promotions apply to a line amount and what
// the discounted amount and commission base become.
package pricing

import (
	"sort"
	"strings"
	"time"

	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// IsValidAt reports whether p may be applied at the given instant for a
// client who has already used it clientUses times.
func IsValidAt(p *entity.Promotion, at time.Time, clientUses int) bool {
	if p == nil || !p.IsActive {
		return false
	}
	if !inDateRange(p, at) || !onAllowedDay(p, at) || !inTimeWindow(p, at) {
		return false
	}
	if p.GlobalCapReached(1) || p.ClientCapReached(clientUses, 1) {
		return false
	}
	return true
}

// ApplyDiscount transforms amount by one discount rule, never going below zero.
func ApplyDiscount(kind enum.DiscountKind, value, amount decimal.Decimal) decimal.Decimal {
	var out decimal.Decimal
	switch kind {
	case enum.DiscountKindPercentage:
		out = amount.Mul(decimal.NewFromInt(1).Sub(value.Div(hundred)))
	case enum.DiscountKindFixedAmount:
		out = amount.Sub(value)
	case enum.DiscountKindFixedPrice:
		out = value
	default:
		out = amount
	}
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// MatchesCoupon reports whether a coupon-gated promotion accepts coupon.
// Promotions without a coupon requirement always match.
func MatchesCoupon(p *entity.Promotion, coupon string) bool {
	if !p.RequiresCoupon {
		return true
	}
	if p.CouponCode == nil || coupon == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(coupon), strings.TrimSpace(*p.CouponCode))
}

// Result is the outcome of evaluating promotions against one amount.
type Result struct {
	Original       decimal.Decimal
	Discounted     decimal.Decimal
	CommissionBase decimal.Decimal
	Applied        entity.AppliedPromotions
}

// Discount is the absolute amount taken off.
func (r Result) Discount() decimal.Decimal {
	return r.Original.Sub(r.Discounted)
}

func noDiscount(amount decimal.Decimal) Result {
	amount = amount.Round(entity.MoneyPlaces)
	return Result{
		Original:       amount,
		Discounted:     amount,
		CommissionBase: amount,
		Applied:        entity.AppliedPromotions{},
	}
}

// Select applies the eligible candidates to amount.
//
// Candidates are assumed to be valid already. Coupon-gated ones are dropped
// unless coupon matches. If every remaining candidate allows combining they
// are all applied in creation order, each on the running amount. Otherwise
// exactly one is applied: the largest absolute discount, then the earliest
// created, then the lowest id.
func Select(candidates []entity.Promotion, amount decimal.Decimal, coupon string) Result {
	eligible := make([]entity.Promotion, 0, len(candidates))
	for i := range candidates {
		if MatchesCoupon(&candidates[i], coupon) {
			eligible = append(eligible, candidates[i])
		}
	}
	if len(eligible) == 0 {
		return noDiscount(amount)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return createdBefore(&eligible[i], &eligible[j])
	})

	stack := true
	for i := range eligible {
		if !eligible[i].AllowsCombining {
			stack = false
			break
		}
	}

	var chosen []entity.Promotion
	if stack {
		chosen = eligible
	} else {
		best := 0
		bestDiscount := amount.Sub(ApplyDiscount(eligible[0].Kind, eligible[0].Value, amount))
		for i := 1; i < len(eligible); i++ {
			d := amount.Sub(ApplyDiscount(eligible[i].Kind, eligible[i].Value, amount))
			// eligible is already in tie-break order, so only a strictly
			// larger discount replaces the current best
			if d.GreaterThan(bestDiscount) {
				best, bestDiscount = i, d
			}
		}
		chosen = eligible[best : best+1]
	}

	return apply(chosen, amount)
}

// Reapply recomputes a result for an explicit, ordered promotion set, e.g.
// after one of them has been dropped at checkout.
func Reapply(promotions []entity.Promotion, amount decimal.Decimal) Result {
	if len(promotions) == 0 {
		return noDiscount(amount)
	}
	return apply(promotions, amount)
}

// apply rounds after every promotion, so each UnitDiscount is a money amount
// and together they add up to Original - Discounted.
func apply(promotions []entity.Promotion, amount decimal.Decimal) Result {
	amount = amount.Round(entity.MoneyPlaces)
	running := amount
	applied := make(entity.AppliedPromotions, 0, len(promotions))
	onDiscounted := true
	for i := range promotions {
		p := &promotions[i]
		next := ApplyDiscount(p.Kind, p.Value, running).Round(entity.MoneyPlaces)
		applied = append(applied, entity.AppliedPromotion{
			PromotionID:            p.ID,
			Name:                   p.Name,
			Kind:                   p.Kind,
			Value:                  p.Value,
			UnitDiscount:           running.Sub(next),
			CommissionOnDiscounted: p.CommissionOnDiscounted,
		})
		if !p.CommissionOnDiscounted {
			onDiscounted = false
		}
		running = next
	}

	res := Result{
		Original:   amount,
		Discounted: running,
		Applied:    applied,
	}
	if onDiscounted {
		res.CommissionBase = res.Discounted
	} else {
		res.CommissionBase = amount
	}
	return res
}

func createdBefore(a, b *entity.Promotion) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

// FromApplied rebuilds the rule a line was priced with, so the line can be
// re-priced from its own snapshot rather than the promotion's current values.
func FromApplied(ap entity.AppliedPromotion) entity.Promotion {
	return entity.Promotion{
		ID:                     ap.PromotionID,
		Name:                   ap.Name,
		Kind:                   ap.Kind,
		Value:                  ap.Value,
		CommissionOnDiscounted: ap.CommissionOnDiscounted,
	}
}
