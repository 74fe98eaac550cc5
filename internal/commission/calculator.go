package commission

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	apperrors "relais/internal/errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = &apperrors.DomainError{
		Code:    "COMMISSION_INVALID_AMOUNT",
		Message: "amount must be greater than zero",
		Status:  http.StatusBadRequest,
	}
	ErrInvalidPercent = &apperrors.DomainError{
		Code:    "COMMISSION_INVALID_PERCENT",
		Message: "percentage must be between 0 and 100",
		Status:  http.StatusBadRequest,
	}
	ErrUnknownType = &apperrors.DomainError{
		Code:    "COMMISSION_UNKNOWN_TYPE",
		Message: "unknown commission type",
		Status:  http.StatusBadRequest,
	}
)

var hundred = decimal.NewFromInt(100)

// Resolve picks the schedule that applies to op under contract.
// A nil contract skips both exception levels and the contract default.
func Resolve(op Operation, contract *Contract) (Config, Source) {
	if contract != nil {
		if exc, ok := matchException(contract.Exceptions, TargetService, op); ok {
			return exc.Config, SourceServiceException
		}
		if exc, ok := matchException(contract.Exceptions, TargetCategory, op); ok {
			return exc.Config, SourceCategoryException
		}
	}

	if op.Config.IsSet() {
		return op.Config, SourceOperationType
	}

	if contract != nil && contract.Default.IsSet() {
		return contract.Default, SourceContractDefault
	}

	return Config{Type: TypeNone}, SourceNone
}

// matchException returns the first exception of kind that targets op.
func matchException(exceptions []Exception, kind TargetType, op Operation) (Exception, bool) {
	for _, exc := range exceptions {
		if exc.TargetType != kind {
			continue
		}
		switch kind {
		case TargetService:
			if exc.Target == strconv.FormatUint(uint64(op.ID), 10) ||
				(op.Code != "" && strings.EqualFold(exc.Target, op.Code)) {
				return exc, true
			}
		case TargetCategory:
			if op.Category != "" && strings.EqualFold(exc.Target, op.Category) {
				return exc, true
			}
		}
	}
	return Exception{}, false
}

// Evaluate computes the fee cfg charges on amount, rounded to whole units.
func Evaluate(cfg Config, amount float64) (decimal.Decimal, error) {
	if amount <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	amt := decimal.NewFromFloat(amount)

	switch cfg.Type {
	case "", TypeNone:
		return decimal.Zero, nil
	case TypeFixed:
		return round(decimal.NewFromFloat(cfg.Amount)), nil
	case TypePercentage:
		return percentOf(amt, cfg.Rate)
	case TypeTiers:
		for _, tier := range cfg.Tiers {
			if !tier.Contains(amount) {
				continue
			}
			if tier.Type == TypePercentage {
				return percentOf(amt, tier.Value)
			}
			return round(decimal.NewFromFloat(tier.Value)), nil
		}
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
}

// Split divides fee into the company share and the partner share.
func Split(fee decimal.Decimal, companySharePercent float64) (company, partner decimal.Decimal, err error) {
	if companySharePercent < 0 || companySharePercent > 100 {
		return decimal.Zero, decimal.Zero, ErrInvalidPercent
	}
	company = round(fee.Mul(decimal.NewFromFloat(companySharePercent)).Div(hundred))
	partner = fee.Sub(company)
	return company, partner, nil
}

// Calculate resolves, evaluates and splits the fee for amount.
func Calculate(op Operation, contract *Contract, amount float64) (Result, error) {
	cfg, source := Resolve(op, contract)

	fee, err := Evaluate(cfg, amount)
	if err != nil {
		return Result{}, err
	}

	company, partner, err := Split(fee, cfg.CompanySharePercent)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Amount:       amount,
		Fee:          fee.InexactFloat64(),
		CompanyShare: company.InexactFloat64(),
		PartnerShare: partner.InexactFloat64(),
		Source:       source,
		Config:       cfg,
	}, nil
}

func percentOf(amount decimal.Decimal, rate float64) (decimal.Decimal, error) {
	if rate < 0 || rate > 100 {
		return decimal.Zero, ErrInvalidPercent
	}
	return round(amount.Mul(decimal.NewFromFloat(rate)).Div(hundred)), nil
}

// round rounds half away from zero to whole currency units.
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}
