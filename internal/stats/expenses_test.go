package stats

import (
	"context"
	"testing"
	"time"

	"walkhub/internal/models"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{12.345, 12.35},
		{12.344, 12.34},
		{-12.345, -12.35},
		{0, 0},
		{100, 100},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Errorf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func expensePeriod() models.Period {
	return models.Period{
		Year:       2023,
		PeriodFrom: ms(date(2023, time.January, 1, 0)),
		PeriodTo:   ms(date(2024, time.January, 1, 0)),
	}
}

func TestExpenseStatsPaidFacet(t *testing.T) {
	p := expensePeriod()
	paidAt := ms(date(2023, time.March, 1, 0))
	f := &fakeStore{
		names: map[string]string{"M001": "Joan Fox"},
		claims: []models.ExpenseClaim{
			{
				ID:        1,
				CreatedBy: "M001",
				Items: []models.ExpenseItem{
					{Description: "Minibus hire", Cost: 12.345, Date: ms(date(2023, time.February, 20, 0))},
				},
				Events: []models.ExpenseEvent{
					{Description: "Submitted", Date: ms(date(2023, time.February, 21, 0))},
					{Description: models.ExpenseEventPaid, Date: paidAt},
				},
			},
		},
	}

	calc := expenseCalculator{expenses: f, members: f}
	out, err := calc.expenseStats(context.Background(), p)
	if err != nil {
		t.Fatalf("expenseStats: %v", err)
	}

	if len(out.Payees) != 1 {
		t.Fatalf("got %d payees, want 1", len(out.Payees))
	}
	payee := out.Payees[0]
	if payee.Name != "Joan Fox" {
		t.Errorf("payee name = %q, want member display name", payee.Name)
	}
	if payee.TotalCost != 12.35 {
		t.Errorf("payee total = %v, want 12.35", payee.TotalCost)
	}
	if payee.ClaimCount != 1 || payee.ItemCount != 1 {
		t.Errorf("claims %d items %d, want 1 and 1", payee.ClaimCount, payee.ItemCount)
	}
	if len(payee.Items) != 1 || payee.Items[0].PaidDate != paidAt {
		t.Errorf("item paid date = %v, want %d", payee.Items, paidAt)
	}
	if out.TotalPaid != 12.35 || out.PaidClaimCount != 1 || out.PaidItemCount != 1 {
		t.Errorf("totals %v/%d/%d", out.TotalPaid, out.PaidClaimCount, out.PaidItemCount)
	}
	if out.TotalUnpaid != 0 || len(out.UnpaidItems) != 0 {
		t.Errorf("unexpected unpaid facet: %v", out.UnpaidItems)
	}
}

func TestExpenseStatsUnpaidFacet(t *testing.T) {
	p := expensePeriod()
	f := &fakeStore{
		claims: []models.ExpenseClaim{
			{
				ID:            2,
				CreatedByName: "Peter Kemp",
				Items: []models.ExpenseItem{
					{Description: "Hall hire", Cost: 20, Date: ms(date(2023, time.June, 1, 0))},
					{Description: "Old receipt", Cost: 5, Date: ms(date(2022, time.June, 1, 0))},
					{Description: "Free item", Cost: 0, Date: ms(date(2023, time.June, 2, 0))},
				},
			},
			{
				ID: 3,
				Items: []models.ExpenseItem{
					{Description: "Printing", Cost: 7.5, Date: ms(date(2023, time.August, 1, 0))},
				},
			},
			{
				// Paid, but outside the period: falls back to the unpaid facet.
				ID: 4,
				Items: []models.ExpenseItem{
					{Description: "First aid supplies", Cost: 3, Date: ms(date(2023, time.April, 1, 0))},
				},
				Events: []models.ExpenseEvent{
					{Description: models.ExpenseEventPaid, Date: ms(date(2022, time.May, 1, 0))},
				},
			},
		},
	}

	calc := expenseCalculator{expenses: f, members: f}
	out, err := calc.expenseStats(context.Background(), p)
	if err != nil {
		t.Fatalf("expenseStats: %v", err)
	}

	if len(out.Payees) != 0 {
		t.Errorf("unexpected paid facet: %v", out.Payees)
	}
	if out.UnpaidItemCount != 3 {
		t.Fatalf("unpaid item count = %d, want 3", out.UnpaidItemCount)
	}
	// Newest first.
	if out.UnpaidItems[0].Description != "Printing" || out.UnpaidItems[1].Description != "Hall hire" {
		t.Errorf("unpaid order = %q, %q", out.UnpaidItems[0].Description, out.UnpaidItems[1].Description)
	}
	if out.UnpaidItems[1].Payee != "Peter Kemp" {
		t.Errorf("payee = %q, want stored claimant name", out.UnpaidItems[1].Payee)
	}
	if out.UnpaidItems[0].Payee != "Unknown" {
		t.Errorf("payee = %q, want Unknown", out.UnpaidItems[0].Payee)
	}
	if out.TotalUnpaid != 30.5 {
		t.Errorf("total unpaid = %v, want 30.5", out.TotalUnpaid)
	}
}

func TestExpenseStatsUndatedPaidEvent(t *testing.T) {
	p := expensePeriod()
	f := &fakeStore{
		claims: []models.ExpenseClaim{
			{
				ID:            5,
				CreatedByName: "Olive Barnes",
				Items: []models.ExpenseItem{
					{Description: "Refreshments", Cost: 9.99, Date: ms(date(2023, time.October, 1, 0))},
				},
				Events: []models.ExpenseEvent{
					{Description: models.ExpenseEventPaid},
				},
			},
		},
	}

	calc := expenseCalculator{expenses: f, members: f}
	out, err := calc.expenseStats(context.Background(), p)
	if err != nil {
		t.Fatalf("expenseStats: %v", err)
	}
	if len(out.Payees) != 1 || len(out.Payees[0].Items) != 1 {
		t.Fatalf("paid facet = %+v, want one payee with one item", out.Payees)
	}
	if got := out.Payees[0].Items[0].PaidDate; got != p.PeriodTo {
		t.Errorf("paid date = %d, want period end %d", got, p.PeriodTo)
	}
}

func TestExpenseStatsPayeeSortOrder(t *testing.T) {
	p := expensePeriod()
	paid := []models.ExpenseEvent{{Description: models.ExpenseEventPaid, Date: ms(date(2023, time.July, 1, 0))}}
	item := func(cost float64) []models.ExpenseItem {
		return []models.ExpenseItem{{Description: "x", Cost: cost, Date: ms(date(2023, time.June, 1, 0))}}
	}
	f := &fakeStore{
		claims: []models.ExpenseClaim{
			{ID: 1, CreatedByName: "Zoe", Items: item(10), Events: paid},
			{ID: 2, CreatedByName: "Amy", Items: item(10), Events: paid},
			{ID: 3, CreatedByName: "Ben", Items: item(25), Events: paid},
		},
	}

	calc := expenseCalculator{expenses: f, members: f}
	out, err := calc.expenseStats(context.Background(), p)
	if err != nil {
		t.Fatalf("expenseStats: %v", err)
	}
	want := []string{"Ben", "Amy", "Zoe"}
	for i, name := range want {
		if out.Payees[i].Name != name {
			t.Errorf("payees[%d] = %q, want %q", i, out.Payees[i].Name, name)
		}
	}
}
