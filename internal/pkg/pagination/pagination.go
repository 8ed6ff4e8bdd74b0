package pagination

import (
	"context"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultSize = 20
	MaxSize     = 100
	// MaxPage keeps (page-1)*size inside a 32-bit offset.
	MaxPage = math.MaxInt32 / MaxSize
)

type Query struct {
	Page int
	Size int
}

// Meta describes the page returned alongside the rows.
type Meta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"currentPage"`
	TotalPage   int   `json:"totalPage"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"hasNextPage"`
}

type Page[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// FromContext reads ?page and ?size, clamping both into range.
func FromContext(c *gin.Context) Query {
	q := Query{
		Page: atoiOr(c.Query("page"), 1),
		Size: atoiOr(c.Query("size"), DefaultSize),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Size < 1 {
		q.Size = DefaultSize
	}
	if q.Size > MaxSize {
		q.Size = MaxSize
	}
	return q
}

// Find counts the rows matched by tx and loads the requested page of them.
// tx must already carry Model and Where clauses; scopes (ordering, preloads) apply
// to the row query only.
func Find[T any](ctx context.Context, tx *gorm.DB, q Query, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	base := tx.Session(&gorm.Session{Context: ctx})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}
	rows := make([]T, 0, q.Size)
	if err := base.Scopes(scopes...).Offset((q.Page - 1) * q.Size).Limit(q.Size).Find(&rows).Error; err != nil {
		return nil, err
	}
	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	return &Page[T]{
		Data: rows,
		Pagination: Meta{
			Total:       total,
			CurrentPage: q.Page,
			TotalPage:   totalPage,
			Size:        q.Size,
			HasNextPage: q.Page < totalPage,
		},
	}, nil
}

func atoiOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
