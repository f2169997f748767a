package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/service/search"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, restaurants, err := search.Search(c.Request().Context(), h.ES, h.Index, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "restaurants": restaurants})
}
