package service

import (
	"context"

	"expense_tracker/internal/models"

	"github.com/shopspring/decimal"
)

type expenseLister interface {
	List(ctx context.Context, userID string, f ExpenseFilter) ([]models.Expense, error)
}

// SummaryService computes dashboard totals over a filtered collection.
type SummaryService struct {
	expenses expenseLister
}

func NewSummaryService(expenses expenseLister) *SummaryService {
	return &SummaryService{expenses: expenses}
}

func (s *SummaryService) Summarize(ctx context.Context, userID string, f ExpenseFilter) (models.Summary, error) {
	list, err := s.expenses.List(ctx, userID, f)
	if err != nil {
		return models.Summary{}, err
	}
	return Summarize(list), nil
}

// Summarize totals income and expense entries; savings is income minus expense.
func Summarize(expenses []models.Expense) models.Summary {
	income, expense := decimal.Zero, decimal.Zero
	for _, e := range expenses {
		switch e.Type {
		case models.TypeIncome:
			income = income.Add(e.Amount)
		case models.TypeExpense:
			expense = expense.Add(e.Amount)
		}
	}
	return models.Summary{
		Income:  income,
		Expense: expense,
		Savings: income.Sub(expense),
		Count:   len(expenses),
	}
}
