package pagination

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// PerPage is the number of items shown on every feed page.
const PerPage = 10

// QueryParam carries the requested 1-based page number.
const QueryParam = "page"

// Page describes one slice of an ordered collection.
type Page struct {
	Number         int
	NumPages       int
	PerPage        int
	Total          int
	Offset         int
	HasNext        bool
	HasPrevious    bool
	NextNumber     int
	PreviousNumber int
}

// Paginate resolves the raw page parameter against total items.
// Missing or malformed values select the first page and out-of-range values clamp
// to the nearest valid page. An empty collection still has one (empty) page.
func Paginate(total int, pageParam string) Page {
	if total < 0 {
		total = 0
	}

	numPages := (total + PerPage - 1) / PerPage
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(pageParam))
	if err != nil || number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	p := Page{
		Number:      number,
		NumPages:    numPages,
		PerPage:     PerPage,
		Total:       total,
		Offset:      (number - 1) * PerPage,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
	if p.HasNext {
		p.NextNumber = number + 1
	}
	if p.HasPrevious {
		p.PreviousNumber = number - 1
	}
	return p
}

// FromQuery reads the page parameter off the request.
func FromQuery(c *gin.Context, total int) Page {
	return Paginate(total, c.Query(QueryParam))
}

// Limit is the LIMIT clause value for this page.
func (p Page) Limit() int {
	return p.PerPage
}

// Pages lists every page number, for rendering page links.
func (p Page) Pages() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
