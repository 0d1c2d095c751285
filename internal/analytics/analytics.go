package analytics

import (
	"context"
	"math"
	"sort"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/recordstore"
)

// weatherCorrelation is a fixed advisory coefficient surfaced on the
// dashboard; the model behind it lives outside this system.
const weatherCorrelation = 0.72

// predictionRate estimates next-period profit as a share of total income.
const predictionRate = 0.15

// MonthlyTrend aggregates one calendar month of transactions.
type MonthlyTrend struct {
	Month   string  `json:"month"` // YYYY-MM
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Profit  float64 `json:"profit"`
}

// CategoryExpense is the total spent in one expense category.
type CategoryExpense struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Summary is the aggregated financial picture for one farmer.
type Summary struct {
	TotalIncome        float64           `json:"total_income"`
	TotalExpense       float64           `json:"total_expense"`
	NetProfit          float64           `json:"net_profit"`
	MonthlyTrends      []MonthlyTrend    `json:"monthly_trends"`
	CategoryExpenses   []CategoryExpense `json:"category_expenses"`
	PredictedProfit    float64           `json:"predicted_profit"`
	WeatherCorrelation float64           `json:"weather_correlation"`
}

// TransactionLister is the slice of the record store the service needs.
type TransactionLister interface {
	ListTransactions(ctx context.Context, farmerID, limit int) ([]recordstore.Transaction, error)
}

// Service computes financial summaries over stored transactions.
type Service struct {
	store    TransactionLister
	farmerID int
}

func NewService(store TransactionLister, farmerID int) *Service {
	return &Service{store: store, farmerID: farmerID}
}

// Summary aggregates every stored transaction into totals, per-month
// trends and per-category expenses.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	transactions, err := s.store.ListTransactions(ctx, s.farmerID, 0)
	if err != nil {
		return Summary{}, err
	}
	return Aggregate(transactions), nil
}

// Aggregate computes a Summary from a transaction list. Pure; exposed so
// callers with an in-memory slice can reuse the arithmetic.
func Aggregate(transactions []recordstore.Transaction) Summary {
	months := make(map[string]*MonthlyTrend)
	categories := make(map[string]float64)
	var totalIncome, totalExpense float64

	for _, t := range transactions {
		monthKey := t.Date
		if len(monthKey) >= 7 {
			monthKey = monthKey[:7]
		}
		trend := months[monthKey]
		if trend == nil {
			trend = &MonthlyTrend{Month: monthKey}
			months[monthKey] = trend
		}
		if t.Type == "INCOME" {
			trend.Income += t.Amount
			trend.Profit += t.Amount
			totalIncome += t.Amount
		} else {
			trend.Expense += t.Amount
			trend.Profit -= t.Amount
			totalExpense += t.Amount
			categories[t.Category] += t.Amount
		}
	}

	trends := make([]MonthlyTrend, 0, len(months))
	for _, t := range months {
		trends = append(trends, *t)
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Month < trends[j].Month })

	expenses := make([]CategoryExpense, 0, len(categories))
	for name, value := range categories {
		expenses = append(expenses, CategoryExpense{Name: name, Value: value})
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Name < expenses[j].Name })

	return Summary{
		TotalIncome:        totalIncome,
		TotalExpense:       totalExpense,
		NetProfit:          totalIncome - totalExpense,
		MonthlyTrends:      trends,
		CategoryExpenses:   expenses,
		PredictedProfit:    math.Round(totalIncome * predictionRate),
		WeatherCorrelation: weatherCorrelation,
	}
}
