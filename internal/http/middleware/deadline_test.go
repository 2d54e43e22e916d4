package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got time.Time
	var had bool
	r := gin.New()
	r.GET("/bounded", Deadline(50*time.Millisecond), func(c *gin.Context) {
		got, had = c.Request.Context().Deadline()
		<-c.Request.Context().Done()
		c.Status(http.StatusOK)
	})
	r.GET("/open", Deadline(0), func(c *gin.Context) {
		_, had = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	start := time.Now()
	serve(r, http.MethodGet, "/bounded", nil)
	if !had || got.Sub(start) > time.Second {
		t.Fatalf("deadline not applied: had=%v at=%v", had, got)
	}
	serve(r, http.MethodGet, "/open", nil)
	if had {
		t.Fatalf("Deadline(0) should leave the context unbounded")
	}
}
