package signal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"signal_board/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var formMessages = map[string]string{
	"Pair":        "Trading pair is required",
	"Type":        "Invalid signal type",
	"Position":    "Invalid position type",
	"Entries":     "All entry prices are required",
	"StopLosses":  "All stop loss prices are required",
	"TakeProfits": "All take profit prices are required",
}

var categoryFields = map[models.Category]string{
	models.CategoryEntries:     "Entries",
	models.CategoryStopLosses:  "StopLosses",
	models.CategoryTakeProfits: "TakeProfits",
}

// ValidateForm проверяет форму до любых изменений состояния.
func ValidateForm(f *models.SignalForm) error {
	f.Pair = strings.TrimSpace(f.Pair)

	if err := validate.Struct(f); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			field := topField(ve[0].StructNamespace())
			if msg, ok := formMessages[field]; ok {
				return invalid(jsonField(field), msg)
			}
			return invalid(jsonField(field), ve[0].Error())
		}
		return invalid("", err.Error())
	}

	if f.Leverage != "" {
		lev, err := decimal.NewFromString(strings.TrimSpace(f.Leverage))
		if err != nil || !lev.IsPositive() {
			return invalid("leverage", "Invalid leverage value")
		}
	}

	levels := f.Levels()
	for _, cat := range models.Categories {
		field := categoryFields[cat]
		for _, l := range levels.Levels(cat) {
			price := strings.TrimSpace(l.Price)
			if price == "" {
				return invalid(jsonField(field), formMessages[field])
			}
			if _, err := decimal.NewFromString(price); err != nil {
				return invalid(jsonField(field), fmt.Sprintf("Invalid %s price %q", strings.ToLower(cat.Label()), l.Price))
			}
		}
	}
	return nil
}

// ParseLeverage — плечо сохраняется только для Long/Short.
func ParseLeverage(f *models.SignalForm) *decimal.Decimal {
	if !f.Position.Leveraged() || strings.TrimSpace(f.Leverage) == "" {
		return nil
	}
	lev, err := decimal.NewFromString(strings.TrimSpace(f.Leverage))
	if err != nil || !lev.IsPositive() {
		return nil
	}
	return &lev
}

// SignalForm.Entries[0].ID -> Entries
func topField(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.IndexAny(ns, ".["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

func jsonField(field string) string {
	if field == "" {
		return ""
	}
	return strings.ToLower(field[:1]) + field[1:]
}
