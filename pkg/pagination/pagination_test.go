package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func makeContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
	}{
		{"默认值", "", 1, 20},
		{"正常解析", "page=3&page_size=50", 3, 50},
		{"非法页码回退", "page=abc&page_size=50", 1, 50},
		{"零页码回退", "page=0", 1, 20},
		{"负数回退", "page=-1&page_size=-5", 1, 20},
		{"超限截断", "page_size=1000", 1, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := ParsePageParams(makeContext(tt.query))
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.pageSize, params.PageSize)
		})
	}
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(2, 10, 35)
	assert.Equal(t, 4, info.TotalPages)
	assert.True(t, info.HasNext)
	assert.True(t, info.HasPrev)

	first := NewPageInfo(1, 10, 5)
	assert.Equal(t, 1, first.TotalPages)
	assert.False(t, first.HasNext)
	assert.False(t, first.HasPrev)

	empty := NewPageInfo(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)

	zero := NewPageInfo(1, 0, 35)
	assert.Equal(t, 0, zero.TotalPages)
}

func TestPageParamsOffset(t *testing.T) {
	params := &PageParams{Page: 3, PageSize: 25}
	assert.Equal(t, 50, params.GetOffset())
	assert.Equal(t, 25, params.GetLimit())
}
