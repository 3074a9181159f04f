package stats

import (
	"context"
	"fmt"
	"math"
	"sort"

	"walkhub/internal/models"
)

// Round2 rounds a currency or mileage figure to 2 decimal places, half away
// from zero. Applied at the point of output only, never mid-calculation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// expenseCalculator computes the paid and unpaid facets over the full claim
// set for one period.
type expenseCalculator struct {
	expenses ExpenseStore
	members  MemberLookup
}

func (c expenseCalculator) expenseStats(ctx context.Context, p models.Period) (models.ExpenseStats, error) {
	claims, err := c.expenses.Claims(ctx)
	if err != nil {
		return models.ExpenseStats{}, fmt.Errorf("expense claims: %w", err)
	}

	var out models.ExpenseStats
	byPayee := make(map[string]*models.PayeeSummary)
	var payeeOrder []string
	var rawPaid, rawUnpaid float64

	for _, claim := range claims {
		paidDate, paid := firstPaidDate(claim, p)
		payee := c.payeeName(ctx, claim)

		if paid {
			summary, ok := byPayee[payee]
			if !ok {
				summary = &models.PayeeSummary{Name: payee}
				byPayee[payee] = summary
				payeeOrder = append(payeeOrder, payee)
			}
			summary.ClaimCount++
			for _, item := range claim.Items {
				summary.ItemCount++
				summary.TotalCost += item.Cost
				rawPaid += item.Cost
				summary.Items = append(summary.Items, models.ExpenseRow{
					ClaimID:     claim.ID,
					Payee:       payee,
					Description: item.Description,
					Cost:        Round2(item.Cost),
					Date:        item.Date,
					PaidDate:    paidDate,
				})
			}
			continue
		}

		// Unpaid facet: one row per priced item dated within the period,
		// listed individually with no aggregation.
		for _, item := range claim.Items {
			if item.Cost <= 0 || item.Date < p.PeriodFrom || item.Date >= p.PeriodTo {
				continue
			}
			rawUnpaid += item.Cost
			out.UnpaidItems = append(out.UnpaidItems, models.ExpenseRow{
				ClaimID:     claim.ID,
				Payee:       payee,
				Description: item.Description,
				Cost:        Round2(item.Cost),
				Date:        item.Date,
			})
		}
	}

	for _, name := range payeeOrder {
		summary := byPayee[name]
		summary.TotalCost = Round2(summary.TotalCost)
		out.Payees = append(out.Payees, *summary)
		out.PaidItemCount += summary.ItemCount
		out.PaidClaimCount += summary.ClaimCount
	}
	sort.SliceStable(out.Payees, func(i, j int) bool {
		if out.Payees[i].TotalCost != out.Payees[j].TotalCost {
			return out.Payees[i].TotalCost > out.Payees[j].TotalCost
		}
		return out.Payees[i].Name < out.Payees[j].Name
	})

	sort.SliceStable(out.UnpaidItems, func(i, j int) bool {
		return out.UnpaidItems[i].Date > out.UnpaidItems[j].Date
	})
	out.UnpaidItemCount = len(out.UnpaidItems)
	out.TotalPaid = Round2(rawPaid)
	out.TotalUnpaid = Round2(rawUnpaid)
	return out, nil
}

// firstPaidDate returns the date of the claim's earliest "Paid" lifecycle
// event inside the period. A paid event with no date falls back to the
// period end.
func firstPaidDate(claim models.ExpenseClaim, p models.Period) (int64, bool) {
	var paidDate int64
	var paid bool
	for _, ev := range claim.Events {
		if ev.Description != models.ExpenseEventPaid {
			continue
		}
		if ev.Date == 0 {
			// Undated paid event: the claim is paid, dated at the period end.
			if !paid {
				paidDate = p.PeriodTo
				paid = true
			}
			continue
		}
		if ev.Date < p.PeriodFrom || ev.Date >= p.PeriodTo {
			continue
		}
		if !paid || ev.Date < paidDate {
			paidDate = ev.Date
			paid = true
		}
	}
	return paidDate, paid
}

// payeeName resolves the claimant display name: member lookup first, then
// the name stored on the claim, then "Unknown".
func (c expenseCalculator) payeeName(ctx context.Context, claim models.ExpenseClaim) string {
	if claim.CreatedBy != "" && c.members != nil {
		if name, err := c.members.DisplayName(ctx, claim.CreatedBy); err == nil && name != "" {
			return name
		}
	}
	if claim.CreatedByName != "" {
		return claim.CreatedByName
	}
	return "Unknown"
}
