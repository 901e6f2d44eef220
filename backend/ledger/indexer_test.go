package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIndexer(t *testing.T, handler http.Handler) (*IndexerClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultIndexerConfig(srv.URL + "/")
	cfg.Timeout = 2 * time.Second
	cfg.FailureThreshold = 2
	cfg.OpenTimeout = time.Minute
	return NewIndexerClient(cfg, zap.NewNop()), srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestIndexer_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/learners/alice/balance", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]uint64{"xp": 2500})
	})
	mux.HandleFunc("/v1/learners/alice/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Profile{Authority: "alice", CurrentStreak: 7, AchievementFlags: []uint64{1 << 63}})
	})
	mux.HandleFunc("/v1/courses/anchor-beginner/enrollments/alice", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Enrollment{Course: "anchor-beginner", LessonFlags: []uint64{0b1011, 0}})
	})
	mux.HandleFunc("/v1/courses/anchor-beginner", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Course{ID: "anchor-beginner", LessonCount: 10, Active: true})
	})
	c, _ := newIndexer(t, mux)
	ctx := context.Background()

	xp, err := c.FetchBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(2500), xp)

	p, err := c.FetchProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint32(7), p.CurrentStreak)
	assert.Equal(t, []uint64{1 << 63}, p.AchievementFlags)

	e, err := c.FetchEnrollment(ctx, "anchor-beginner", "alice")
	require.NoError(t, err)
	assert.Equal(t, []uint64{0b1011, 0}, e.LessonFlags)

	course, err := c.FetchCourse(ctx, "anchor-beginner")
	require.NoError(t, err)
	assert.Equal(t, 10, course.LessonCount)
}

func TestIndexer_NotFound(t *testing.T) {
	var hits atomic.Int32
	c, _ := newIndexer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))

	for i := 0; i < 5; i++ {
		_, err := c.FetchProfile(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	}
	assert.Equal(t, int32(5), hits.Load(), "404s must not open the circuit")
}

func TestIndexer_SubmitInstruction(t *testing.T) {
	c, _ := newIndexer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/instructions", r.URL.Path)

		var ins Instruction
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&ins))
		if ins.LessonIndex == 99 {
			writeJSON(w, http.StatusUnprocessableEntity, indexerError{Code: "lesson_out_of_range", Error: "index 99"})
			return
		}
		writeJSON(w, http.StatusOK, Receipt{
			Signature: "5xyz",
			XPAwarded: 30,
			Events:    []Event{{Kind: EventLessonCompleted, Detail: "2"}},
		})
	}))
	ctx := context.Background()

	r, err := c.SubmitInstruction(ctx, Instruction{Kind: CompleteLesson, Learner: "alice", CourseID: "anchor-beginner", LessonIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, "5xyz", r.Signature)
	assert.Equal(t, uint64(30), r.XPAwarded)

	_, err = c.SubmitInstruction(ctx, Instruction{Kind: CompleteLesson, Learner: "alice", CourseID: "anchor-beginner", LessonIndex: 99})
	assert.ErrorIs(t, err, ErrLessonOutOfRange)
}

func TestIndexer_CircuitOpens(t *testing.T) {
	var hits atomic.Int32
	c, _ := newIndexer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := c.FetchBalance(ctx, "alice")
		assert.ErrorIs(t, err, ErrIndexerUnavailable)
	}
	assert.Equal(t, int32(2), hits.Load(), "requests after the threshold fail fast")
}
