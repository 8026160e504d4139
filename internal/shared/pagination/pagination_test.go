package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPaginate_ThirteenItems(t *testing.T) {
	first := Paginate(13, "1")
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, first.NumPages)
	assert.Equal(t, 0, first.Offset)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrevious)
	assert.Equal(t, 2, first.NextNumber)

	second := Paginate(13, "2")
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, 10, second.Offset)
	assert.False(t, second.HasNext)
	assert.True(t, second.HasPrevious)
	assert.Equal(t, 1, second.PreviousNumber)
}

func TestPaginate_Clamping(t *testing.T) {
	tests := []struct {
		name  string
		total int
		param string
		want  int
	}{
		{"missing", 25, "", 1},
		{"not a number", 25, "abc", 1},
		{"zero", 25, "0", 1},
		{"negative", 25, "-4", 1},
		{"past the end", 25, "99", 3},
		{"exact last", 25, "3", 3},
		{"empty collection", 0, "5", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.total, tt.param)
			assert.Equal(t, tt.want, p.Number)
			assert.Equal(t, (tt.want-1)*PerPage, p.Offset)
		})
	}
}

func TestPaginate_EmptyHasOnePage(t *testing.T) {
	p := Paginate(0, "")
	assert.Equal(t, 1, p.NumPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrevious)
	assert.Equal(t, []int{1}, p.Pages())
}

func TestFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=2", nil)

	p := FromQuery(c, 13)
	assert.Equal(t, 2, p.Number)
	assert.Equal(t, 10, p.Limit())
}
