package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestParsePageClampsAndDerivesMeta(t *testing.T) {
	cases := []struct {
		query      string
		total      int
		wantPage   int
		wantLimit  int
		wantOffset int
		wantPages  int
	}{
		{query: "", total: 0, wantPage: 1, wantLimit: defaultPageLimit, wantOffset: 0, wantPages: 0},
		{query: "?page=3&limit=5", total: 11, wantPage: 3, wantLimit: 5, wantOffset: 10, wantPages: 3},
		{query: "?page=0&limit=-4", total: 10, wantPage: 1, wantLimit: defaultPageLimit, wantOffset: 0, wantPages: 1},
		{query: "?page=2&limit=500", total: 120, wantPage: 2, wantLimit: maxPageLimit, wantOffset: maxPageLimit, wantPages: 3},
	}

	for _, tc := range cases {
		var got pageRequest
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error {
			got = parsePage(c)
			return c.SendStatus(fiber.StatusNoContent)
		})

		if _, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)); err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		meta := got.meta(tc.total)
		if got.page != tc.wantPage || got.limit != tc.wantLimit || got.offset() != tc.wantOffset || meta.TotalPages != tc.wantPages {
			t.Fatalf("%q: got page=%d limit=%d offset=%d pages=%d", tc.query, got.page, got.limit, got.offset(), meta.TotalPages)
		}
	}
}
