package commission

import (
	"fmt"
	"net/http"
	"sort"

	apperrors "relais/internal/errors"
)

var ErrInvalidTiers = &apperrors.DomainError{
	Code:    "COMMISSION_INVALID_TIERS",
	Message: "invalid commission tiers",
	Status:  http.StatusBadRequest,
}

// ValidateConfig checks a schedule before it is stored.
func ValidateConfig(cfg Config) error {
	if cfg.CompanySharePercent < 0 || cfg.CompanySharePercent > 100 {
		return fmt.Errorf("company share: %w", ErrInvalidPercent)
	}

	switch cfg.Type {
	case "", TypeNone:
		return nil
	case TypeFixed:
		if cfg.Amount < 0 {
			return fmt.Errorf("fixed amount: %w", ErrInvalidAmount)
		}
	case TypePercentage:
		if cfg.Rate < 0 || cfg.Rate > 100 {
			return fmt.Errorf("rate: %w", ErrInvalidPercent)
		}
	case TypeTiers:
		return ValidateTiers(cfg.Tiers)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
	return nil
}

// ValidateTiers requires tiers sorted by From and non-overlapping. Adjacent
// tiers may share a boundary; the earlier tier wins there. Only the last tier
// may be open-ended.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: at least one tier is required", ErrInvalidTiers)
	}

	for i, t := range tiers {
		if t.From < 0 {
			return fmt.Errorf("%w: tier %d starts below zero", ErrInvalidTiers, i+1)
		}
		if t.To != 0 && t.To < t.From {
			return fmt.Errorf("%w: tier %d ends before it starts", ErrInvalidTiers, i+1)
		}
		switch t.Type {
		case TypeFixed:
			if t.Value < 0 {
				return fmt.Errorf("%w: tier %d has a negative amount", ErrInvalidTiers, i+1)
			}
		case TypePercentage:
			if t.Value < 0 || t.Value > 100 {
				return fmt.Errorf("%w: tier %d rate out of range", ErrInvalidTiers, i+1)
			}
		default:
			return fmt.Errorf("%w: tier %d has type %q", ErrInvalidTiers, i+1, t.Type)
		}

		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if prev.To == 0 {
			return fmt.Errorf("%w: tier %d follows an open-ended tier", ErrInvalidTiers, i+1)
		}
		if t.From < prev.To {
			return fmt.Errorf("%w: tier %d overlaps tier %d", ErrInvalidTiers, i+1, i)
		}
	}
	return nil
}

// SortTiers orders tiers by their lower bound.
func SortTiers(tiers []Tier) {
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].From < tiers[j].From
	})
}
