package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const MaxPageSize = 100

func ValidatePage(page, pageSize int) error {
	if page < 1 {
		return ErrInvalidPage
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	return nil
}

// ParsePagination reads page/pageSize query params with defaults 1 and 20.
func ParsePagination(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 0, 0, ErrInvalidPage
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if err != nil {
		return 0, 0, ErrInvalidPageSize
	}
	if err := ValidatePage(page, pageSize); err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}
