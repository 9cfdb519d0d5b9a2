package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func rateTestRouter(perMinute int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RateLimit(perMinute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	r := rateTestRouter(5)

	for i := 0; i < 5; i++ {
		if code := doRequest(r, "192.0.2.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := doRequest(r, "192.0.2.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", code)
	}
}

func TestRateLimit_TracksClientsSeparately(t *testing.T) {
	r := rateTestRouter(1)

	if code := doRequest(r, "192.0.2.1:1234"); code != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", code)
	}
	if code := doRequest(r, "192.0.2.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("first client: expected 429, got %d", code)
	}
	if code := doRequest(r, "192.0.2.2:1234"); code != http.StatusOK {
		t.Fatalf("second client must have its own budget, got %d", code)
	}
}
