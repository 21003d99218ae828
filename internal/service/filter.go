package service

import (
	"strings"

	"expense_tracker/internal/models"
)

// ExpenseFilter holds the raw query values; empty means "not given".
type ExpenseFilter struct {
	Type  string
	Month string
	Year  string
}

// Apply keeps the entries matching the filter, preserving insertion order.
// Type must match exactly. Month narrows only together with Year; a month on its own
// has no effect. Month or year values without a leading integer match nothing.
// The result is never nil.
func (f ExpenseFilter) Apply(expenses []models.Expense) []models.Expense {
	out := make([]models.Expense, 0, len(expenses))

	month, monthOK := parseLeadingInt(f.Month)
	year, yearOK := parseLeadingInt(f.Year)
	byMonth := f.Month != "" && f.Year != ""
	byYear := !byMonth && f.Year != ""

	for _, e := range expenses {
		if f.Type != "" && string(e.Type) != f.Type {
			continue
		}
		switch {
		case byMonth:
			if !monthOK || !yearOK || int(e.Date.Month()) != month || e.Date.Year() != year {
				continue
			}
		case byYear:
			if !yearOK || e.Date.Year() != year {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// parseLeadingInt reads an optionally signed base-10 integer prefix after leading
// whitespace, so "03" is 3 and "2024abc" is 2024. ok is false when no digit is found.
func parseLeadingInt(s string) (n int, ok bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		// past 1e9 the value can no longer match a month or a year
		if n < 1e9 {
			n = n*10 + int(s[digits]-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
