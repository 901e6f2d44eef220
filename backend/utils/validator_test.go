package utils

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enrollInput struct {
	Learner     string `json:"learner" validate:"required,wallet"`
	CourseID    string `json:"course_id" validate:"required"`
	LessonIndex *int   `json:"lesson_index" validate:"required,gte=0"`
}

func TestValidateStruct(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	index := 2

	assert.Nil(t, ValidateStruct(enrollInput{
		Learner:     base58.Encode(pub),
		CourseID:    "anchor-beginner",
		LessonIndex: &index,
	}))

	negative := -1
	errs := ValidateStruct(enrollInput{Learner: "nope", LessonIndex: &negative})
	assert.Equal(t, "must be a base58 wallet address", errs["learner"])
	assert.Equal(t, "is required", errs["course_id"])
	assert.Equal(t, "must be greater than or equal to 0", errs["lesson_index"])

	errs = ValidateStruct(enrollInput{})
	assert.Equal(t, "is required", errs["learner"])
	assert.Equal(t, "is required", errs["lesson_index"])
}
