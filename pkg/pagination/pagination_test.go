package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func parseQuery(query string) Params {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, Limit: 20}},
		{"page=3&limit=5", Params{Page: 3, Limit: 5}},
		{"page=0&limit=-1", Params{Page: 1, Limit: 20}},
		{"page=abc&limit=1000", Params{Page: 1, Limit: MaxLimit}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, parseQuery(tt.query))
		})
	}
}

func TestWithTotal(t *testing.T) {
	p := Params{Page: 2, Limit: 10}
	assert.EqualValues(t, 0, p.WithTotal(0).TotalPages)
	assert.EqualValues(t, 1, p.WithTotal(10).TotalPages)
	assert.EqualValues(t, 3, p.WithTotal(21).TotalPages)
	assert.EqualValues(t, 21, p.WithTotal(21).Total)
}
