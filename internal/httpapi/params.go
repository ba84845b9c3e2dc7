package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/safar/go-sql-shop/internal/apperr"
)

func parseInt64(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.BadRequest(name, "a valid integer is required")
	}
	return n, nil
}

func pageParams(c *gin.Context) (int, int, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return 0, 0, err
	}
	pageSize, err := queryInt(c, "page_size")
	if err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}
