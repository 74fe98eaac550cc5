package handlers

import (
	"strconv"
	"time"

	apperrors "relais/internal/errors"
	"relais/internal/models"
	"relais/internal/utils"
	"relais/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// bind parses the request body into dst and validates its tags.
func bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.New("INVALID_BODY", "invalid request body", fiber.StatusBadRequest)
	}
	return validation.Struct(dst)
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.New("INVALID_ID", "invalid "+name, fiber.StatusBadRequest)
	}
	return uint(id), nil
}

// filterQuery reads optional list filters. Absent keys yield nil; the first
// malformed value is kept and reported by Err.
type filterQuery struct {
	c   *fiber.Ctx
	err error
}

func filters(c *fiber.Ctx) *filterQuery {
	return &filterQuery{c: c}
}

func (q *filterQuery) invalid(key string) {
	if q.err == nil {
		q.err = apperrors.New("INVALID_QUERY", "invalid "+key, fiber.StatusBadRequest)
	}
}

// ID reads a positive integer such as agent_id.
func (q *filterQuery) ID(key string) *uint {
	raw := q.c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		q.invalid(key)
		return nil
	}
	id := uint(v)
	return &id
}

// Time accepts RFC 3339 timestamps or plain dates.
func (q *filterQuery) Time(key string) *time.Time {
	raw := q.c.Query(key)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	q.invalid(key)
	return nil
}

// Amount reads a non-negative number; absent reads as 0.
func (q *filterQuery) Amount(key string) float64 {
	raw := q.c.Query(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		q.invalid(key)
		return 0
	}
	return v
}

func (q *filterQuery) Err() error {
	return q.err
}

func claimsOf(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return nil, apperrors.New("UNAUTHORIZED", "unauthorized", fiber.StatusUnauthorized)
	}
	return claims, nil
}
