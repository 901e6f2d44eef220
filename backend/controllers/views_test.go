package controllers

import (
	"testing"
	"time"

	"academy/backend/ledger"
	"academy/backend/models"
	"academy/backend/progression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevelView(t *testing.T) {
	v := NewLevelView(progression.DefaultCurve, 2600)
	assert.Equal(t, 5, v.Level)
	assert.Equal(t, uint64(2500), v.CurrentLevelXP)
	assert.Equal(t, uint64(3600), v.NextLevelXP)
	assert.Equal(t, uint64(1000), v.XPToNextLevel)
	assert.InDelta(t, 100.0/1100.0*100, v.Progress, 1e-9)
	assert.Equal(t, "2,600", v.XPFull)
}

func TestNewStreakView(t *testing.T) {
	v := NewStreakView(progression.DefaultMilestones, 29, 40, 1)
	assert.False(t, v.IsMilestone)
	require.NotNil(t, v.NextMilestone)
	assert.Equal(t, uint32(30), *v.NextMilestone)
	assert.Equal(t, uint32(1), *v.DaysToNextMilestone)

	v = NewStreakView(progression.DefaultMilestones, 365, 365, 0)
	assert.True(t, v.IsMilestone)
	assert.Nil(t, v.NextMilestone)
}

func TestNewEnrollmentView(t *testing.T) {
	completedAt := int64(1_710_000_000)
	e := &ledger.Enrollment{
		Course:          "anchor-beginner",
		EnrolledAt:      1_709_000_000,
		CompletedAt:     &completedAt,
		LessonFlags:     []uint64{0b1011, 0},
		CredentialAsset: "tx123",
	}
	lessons := []models.Lesson{
		{LessonIndex: 0, Title: "Intro", DurationMinutes: 15},
		{LessonIndex: 1, Title: "Setup", DurationMinutes: 20},
	}

	v := NewEnrollmentView(e, 4, lessons)
	assert.Equal(t, 3, v.CompletedLessons)
	assert.Equal(t, 75, v.CompletionPercent)
	assert.Equal(t, 75, v.RawCompletionPercent)
	require.Len(t, v.Lessons, 4)
	assert.Equal(t, "Intro", v.Lessons[0].Title)
	assert.True(t, v.Lessons[1].Completed)
	assert.False(t, v.Lessons[2].Completed)
	assert.Equal(t, "Lesson 3", v.Lessons[2].Title)
	assert.Equal(t, progression.CredentialBaseURL+"tx123", v.CredentialURL)
	assert.True(t, v.Completed)
}

func TestNewEnrollmentView_ClampsDisplayPercent(t *testing.T) {
	e := &ledger.Enrollment{LessonFlags: []uint64{0b111, 0}}

	v := NewEnrollmentView(e, 2, nil)
	assert.Equal(t, 150, v.RawCompletionPercent)
	assert.Equal(t, 100, v.CompletionPercent)

	v = NewEnrollmentView(e, 0, nil)
	assert.Equal(t, 0, v.CompletionPercent)
	assert.Empty(t, v.Lessons)
}

func TestNewProfileView(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	p := &ledger.Profile{
		Authority:        "alice",
		CurrentStreak:    7,
		LongestStreak:    9,
		LastActivityDate: now.Add(-2 * time.Hour).Unix(),
		AchievementFlags: []uint64{0b101},
		XPEarnedToday:    90,
		LastXPDay:        now.Unix()/86400 - 1,
	}

	v := NewProfileView(progression.DefaultCurve, progression.DefaultMilestones, p, 150, now)
	assert.Equal(t, 1, v.XP.Level)
	assert.True(t, v.Streak.IsMilestone)
	assert.Equal(t, 2, v.AchievementsUnlocked)
	assert.Equal(t, "2 hours ago", v.LastActive)
	assert.Equal(t, uint64(0), v.XPEarnedToday, "counter from yesterday")
}

func TestScoreQuiz(t *testing.T) {
	questions := []models.QuizQuestion{{CorrectAnswer: 1}, {CorrectAnswer: 1}, {CorrectAnswer: 1}}

	correct, percent, marks := ScoreQuiz(questions, []int{1, 0, 1})
	assert.Equal(t, 2, correct)
	assert.Equal(t, 67, percent)
	assert.Equal(t, []bool{true, false, true}, marks)

	_, percent, _ = ScoreQuiz(questions, []int{1})
	assert.Equal(t, 33, percent)

	_, percent, _ = ScoreQuiz(nil, nil)
	assert.Equal(t, 100, percent)
}

func TestNewCourseSummary(t *testing.T) {
	s := NewCourseSummary(models.Course{
		Slug:              "rust-beginner",
		TrackID:           2,
		Difficulty:        1,
		XPPerLesson:       25,
		CompletionBonusXP: 150,
		Lessons:           []models.Lesson{{DurationMinutes: 30}, {DurationMinutes: 45}},
	})
	assert.Equal(t, "Rust for Solana", s.Track)
	assert.Equal(t, "rust", s.TrackSlug)
	assert.Equal(t, uint64(200), s.TotalXP)
	assert.Equal(t, 75, s.EstimatedMinutes)
	assert.Equal(t, "1h", s.EstimatedDuration)
}
