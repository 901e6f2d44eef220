package seed

import (
	"encoding/json"
	"testing"

	"academy/backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Course{}, &models.Lesson{}, &models.QuizQuestion{}))
	return db
}

func TestApply_Idempotent(t *testing.T) {
	db := openDB(t)

	created, err := Apply(db)
	require.NoError(t, err)
	assert.Equal(t, len(Slugs()), created)

	created, err = Apply(db)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	var n int64
	db.Model(&models.Course{}).Count(&n)
	assert.Equal(t, int64(4), n)
}

func TestApply_AnchorCourse(t *testing.T) {
	db := openDB(t)
	_, err := Apply(db)
	require.NoError(t, err)

	var course models.Course
	require.NoError(t, db.Preload("Lessons", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("lesson_index")
	}).Preload("Lessons.Questions").Where("slug = ?", "anchor-beginner").First(&course).Error)

	assert.Equal(t, uint64(30), course.XPPerLesson)
	assert.Equal(t, uint64(200), course.CompletionBonusXP)
	assert.True(t, course.Active)
	require.Len(t, course.Lessons, 10)
	assert.Equal(t, "Introduction to Anchor", course.Lessons[0].Title)
	assert.Equal(t, 9, course.Lessons[9].LessonIndex)
	assert.Equal(t, 40, course.Lessons[8].DurationMinutes)

	require.Len(t, course.Lessons[0].Questions, 3)
	var opts []string
	require.NoError(t, json.Unmarshal([]byte(course.Lessons[0].Questions[1].Options), &opts))
	assert.Equal(t, "Rust", opts[course.Lessons[0].Questions[1].CorrectAnswer])
}
