package handlers

import (
	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

// pageRequest is the 1-based page window read from ?page= and ?limit=.
type pageRequest struct {
	page  int
	limit int
}

func parsePage(c *fiber.Ctx) pageRequest {
	req := pageRequest{
		page:  parsePositiveInt(c.Query("page"), 1),
		limit: parsePositiveInt(c.Query("limit"), defaultPageLimit),
	}
	req.limit = min(req.limit, maxPageLimit)
	return req
}

func (p pageRequest) offset() int {
	return (p.page - 1) * p.limit
}

func (p pageRequest) meta(total int) models.PaginationMeta {
	meta := models.PaginationMeta{Page: p.page, Limit: p.limit, Total: total}
	if total > 0 {
		meta.TotalPages = (total + p.limit - 1) / p.limit
	}
	return meta
}
