package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query    string
		wantPage int
		wantSize int
	}{
		{"", 1, DefaultSize},
		{"?page=3&size=10", 3, 10},
		{"?page=0&size=0", 1, DefaultSize},
		{"?page=-4&size=500", 1, MaxSize},
		{"?page=abc&size=xyz", 1, DefaultSize},
		{"?page=9223372036854775807&size=100", MaxPage, MaxSize},
		{"?page=99999999", MaxPage, DefaultSize},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/list"+tt.query, nil)

			q := FromContext(c)
			if q.Page != tt.wantPage || q.Size != tt.wantSize {
				t.Errorf("FromContext() = %+v, want page %d size %d", q, tt.wantPage, tt.wantSize)
			}
			if offset := (q.Page - 1) * q.Size; offset < 0 {
				t.Errorf("offset = %d, want non-negative", offset)
			}
		})
	}
}
