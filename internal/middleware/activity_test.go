package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"aicourse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
}

type recordingTracker struct {
	seen chan string
	err  error
}

func (r *recordingTracker) UpdateLastSeen(id string) error {
	r.seen <- id
	return r.err
}

func newActivityRouter(tracker ActivityTracker) *gin.Engine {
	router := gin.New()
	router.Use(ActivityMiddleware(tracker))
	router.GET("/x", func(c *gin.Context) { c.Status(200) })
	return router
}

func (r *recordingTracker) wait(t *testing.T) string {
	t.Helper()
	select {
	case id := <-r.seen:
		return id
	case <-time.After(time.Second):
		t.Fatal("UpdateLastSeen never called")
		return ""
	}
}

func TestActivityMiddlewareIdentifiesUser(t *testing.T) {
	tracker := &recordingTracker{seen: make(chan string, 1)}
	router := newActivityRouter(tracker)

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-User-ID", "user-h")
	router.ServeHTTP(httptest.NewRecorder(), req)
	if got := tracker.wait(t); got != "user-h" {
		t.Errorf("tracked %q, want header value", got)
	}

	req = httptest.NewRequest("GET", "/x?ownerId=user-q", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	if got := tracker.wait(t); got != "user-q" {
		t.Errorf("tracked %q, want query value", got)
	}

	// Header wins over query.
	req = httptest.NewRequest("GET", "/x?ownerId=user-q", nil)
	req.Header.Set("X-User-ID", "user-h")
	router.ServeHTTP(httptest.NewRecorder(), req)
	if got := tracker.wait(t); got != "user-h" {
		t.Errorf("tracked %q, want header value", got)
	}
}

func TestActivityMiddlewareAnonymousAndFailing(t *testing.T) {
	tracker := &recordingTracker{seen: make(chan string, 1)}
	router := newActivityRouter(tracker)

	// No identity: tracker untouched.
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/x", nil))
	select {
	case id := <-tracker.seen:
		t.Fatalf("anonymous request tracked as %q", id)
	case <-time.After(50 * time.Millisecond):
	}

	// Tracker failure is logged, never surfaced to the client.
	tracker.err = errors.New("db down")
	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-User-ID", "user-h")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	tracker.wait(t)
	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
