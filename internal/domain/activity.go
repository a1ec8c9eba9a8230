package domain

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryTrades              Category = "TRADES"
	CategoryMoneyMovements      Category = "MONEY_MOVEMENTS"
	CategoryPositionAdjustments Category = "POSITION_ADJUSTMENTS"
)

func DefaultCategories() []Category {
	return []Category{CategoryTrades, CategoryMoneyMovements, CategoryPositionAdjustments}
}

func ParseCategory(raw string) (Category, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == "" {
		return "", fmt.Errorf("activity category is empty")
	}
	return Category(normalized), nil
}

// RawRecord is one activity object exactly as the portal returned it.
type RawRecord map[string]any

// CategoryPayload holds the decoded response for one category.
type CategoryPayload struct {
	Category Category
	Records  []RawRecord
}
