package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"academy/backend/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ledger.ErrAccountNotFound, fiber.StatusNotFound},
		{fmt.Errorf("%w: profile alice", ledger.ErrAccountNotFound), fiber.StatusNotFound},
		{ledger.ErrAlreadyEnrolled, fiber.StatusConflict},
		{ledger.ErrLessonAlreadyCompleted, fiber.StatusConflict},
		{ledger.ErrBonusAlreadyClaimed, fiber.StatusConflict},
		{ledger.ErrLessonOutOfRange, fiber.StatusUnprocessableEntity},
		{ledger.ErrCourseNotCompleted, fiber.StatusUnprocessableEntity},
		{ledger.ErrCourseInactive, fiber.StatusUnprocessableEntity},
		{ledger.ErrIndexerUnavailable, fiber.StatusServiceUnavailable},
		{errors.New("disk on fire"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return LedgerError(c, tc.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}
}
