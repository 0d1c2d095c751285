package analytics

import (
	"testing"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/recordstore"
)

func TestAggregateTotalsAndTrends(t *testing.T) {
	transactions := []recordstore.Transaction{
		{Date: "2026-07-02", Type: "INCOME", Category: "Harvest", Amount: 10000},
		{Date: "2026-07-10", Type: "EXPENSE", Category: "Fertilizer", Amount: 1500},
		{Date: "2026-08-01", Type: "EXPENSE", Category: "Seeds", Amount: 500},
		{Date: "2026-08-20", Type: "INCOME", Category: "Harvest", Amount: 2000},
	}

	sum := Aggregate(transactions)

	if sum.TotalIncome != 12000 {
		t.Fatalf("total income: got %v", sum.TotalIncome)
	}
	if sum.TotalExpense != 2000 {
		t.Fatalf("total expense: got %v", sum.TotalExpense)
	}
	if sum.NetProfit != 10000 {
		t.Fatalf("net profit: got %v", sum.NetProfit)
	}
	if sum.PredictedProfit != 1800 {
		t.Fatalf("predicted profit: got %v", sum.PredictedProfit)
	}

	if len(sum.MonthlyTrends) != 2 {
		t.Fatalf("expected 2 monthly trends, got %d", len(sum.MonthlyTrends))
	}
	july := sum.MonthlyTrends[0]
	if july.Month != "2026-07" || july.Income != 10000 || july.Expense != 1500 || july.Profit != 8500 {
		t.Fatalf("unexpected july trend: %+v", july)
	}
	august := sum.MonthlyTrends[1]
	if august.Month != "2026-08" || august.Profit != 1500 {
		t.Fatalf("unexpected august trend: %+v", august)
	}
}

func TestAggregateCategoriesOnlyCountExpenses(t *testing.T) {
	transactions := []recordstore.Transaction{
		{Date: "2026-08-01", Type: "EXPENSE", Category: "Fertilizer", Amount: 300},
		{Date: "2026-08-02", Type: "EXPENSE", Category: "Fertilizer", Amount: 200},
		{Date: "2026-08-03", Type: "INCOME", Category: "Harvest", Amount: 900},
	}
	sum := Aggregate(transactions)
	if len(sum.CategoryExpenses) != 1 {
		t.Fatalf("expected 1 expense category, got %d", len(sum.CategoryExpenses))
	}
	if sum.CategoryExpenses[0].Name != "Fertilizer" || sum.CategoryExpenses[0].Value != 500 {
		t.Fatalf("unexpected category bucket: %+v", sum.CategoryExpenses[0])
	}
}

func TestAggregateEmpty(t *testing.T) {
	sum := Aggregate(nil)
	if sum.NetProfit != 0 || sum.PredictedProfit != 0 {
		t.Fatalf("expected zeroed summary, got %+v", sum)
	}
	if sum.WeatherCorrelation != 0.72 {
		t.Fatalf("expected fixed weather correlation, got %v", sum.WeatherCorrelation)
	}
}
