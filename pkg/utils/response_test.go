package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"screw-inspection/pkg/apperrors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperrors.Validation("bad"), fiber.StatusBadRequest},
		{"invalid input", apperrors.InvalidInput("bad image"), fiber.StatusBadRequest},
		{"not found", apperrors.NotFound("engine"), fiber.StatusNotFound},
		{"unconfigured", apperrors.Unconfigured("nothing selected"), fiber.StatusNotFound},
		{"conflict", apperrors.Conflict("active"), fiber.StatusConflict},
		{"detector", fmt.Errorf("%w: loading", apperrors.ErrDetectorUnavailable), fiber.StatusServiceUnavailable},
		{"unauthorized", apperrors.ErrUnauthorized, fiber.StatusUnauthorized},
		{"forbidden", apperrors.ErrForbidden, fiber.StatusForbidden},
		{"storage", apperrors.Storage("insert", errors.New("disk full")), fiber.StatusInternalServerError},
		{"fiber", fiber.NewError(fiber.StatusRequestEntityTooLarge, "big"), fiber.StatusRequestEntityTooLarge},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

type sample struct {
	Name  string `validate:"required"`
	Count int    `validate:"min=1"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(&sample{Name: "x", Count: 1}))

	err := ValidateStruct(&sample{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "Name (required)")
	assert.Contains(t, err.Error(), "Count (min=1)")
}
