package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presswire/newsdex/internal/domain"
	"github.com/presswire/newsdex/internal/logger"
	"github.com/presswire/newsdex/internal/store"
)

const (
	defaultPageNo   = 1
	defaultPageSize = 10

	// queryDateLayout is the DD-MM-YYYY form the stats endpoint accepts.
	queryDateLayout = "02-01-2006"
)

// Index is the read-only view of the store the query services need.
type Index interface {
	Count() (int, error)
	Range(offset, limit int) ([]string, error)
	Article(id string) (domain.Article, error)
	StatsExist(source string) (bool, error)
	SumRange(source string, start, end time.Time) (int64, error)
}

// handlers serves the read API over the index.
type handlers struct {
	index Index
	log   logger.Logger
}

// articlesResponse is the pagination envelope.
type articlesResponse struct {
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []domain.Article `json:"results"`
}

// root lists example endpoint URLs for discovery.
func (h *handlers) root(c *gin.Context) {
	base := requestURL(c)
	c.JSON(http.StatusOK, []string{
		base + "stats/?source=in.finance.yahoo.com&start_date=25-03-2020&end_date=29-03-2020",
		base + "articles/",
	})
}

// articles serves the paginated article list in ingestion order.
func (h *handlers) articles(c *gin.Context) {
	pageNo, okNo := intQuery(c, "page_no", defaultPageNo)
	pageSize, okSize := intQuery(c, "page_size", defaultPageSize)
	if !okNo || !okSize {
		invalidPage(c)
		return
	}

	count, err := h.index.Count()
	if err != nil {
		h.serverError(c, "index count failed", err)
		return
	}

	// The offset multiplication can wrap for huge page numbers; a wrapped
	// offset must land on the invalid-page outcome, not an empty envelope.
	if pageNo-1 > math.MaxInt/pageSize {
		invalidPage(c)
		return
	}
	offset := (pageNo - 1) * pageSize
	if offset >= count {
		invalidPage(c)
		return
	}

	ids, err := h.index.Range(offset, pageSize)
	if err != nil {
		h.serverError(c, "index range failed", err)
		return
	}

	results := make([]domain.Article, 0, len(ids))
	for _, id := range ids {
		rec, err := h.index.Article(id)
		if err != nil {
			// An indexed id without a record means a torn store; surface
			// the rest of the page rather than failing it.
			h.log.WarnObj("indexed article missing", "index_orphan", map[string]any{
				"article_id": id,
				"error":      err.Error(),
			})
			continue
		}
		results = append(results, rec)
	}

	next, prev := pageLinks(requestURL(c), pageNo, count, pageSize)
	c.JSON(http.StatusOK, articlesResponse{
		Count:    count,
		Next:     next,
		Previous: prev,
		Results:  results,
	})
}

// stats serves the per-source article count over a date range.
func (h *handlers) stats(c *gin.Context) {
	source := strings.TrimSpace(c.Query("source"))
	startRaw := strings.TrimSpace(c.Query("start_date"))
	endRaw := strings.TrimSpace(c.Query("end_date"))

	if source == "" || startRaw == "" {
		c.String(http.StatusOK, "Insufficient args")
		return
	}

	exists, err := h.index.StatsExist(source)
	if err != nil {
		h.serverError(c, "stats lookup failed", err)
		return
	}
	if !exists {
		c.String(http.StatusOK, "Stats not found")
		return
	}

	start, err := time.Parse(queryDateLayout, startRaw)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid date")
		return
	}
	var end time.Time
	if endRaw != "" {
		if end, err = time.Parse(queryDateLayout, endRaw); err != nil {
			c.String(http.StatusBadRequest, "Invalid date")
			return
		}
	}

	total, err := h.index.SumRange(source, start, end)
	if err != nil {
		if errors.Is(err, store.ErrStatsNotFound) {
			c.String(http.StatusOK, "Stats not found")
			return
		}
		h.serverError(c, "stats sum failed", err)
		return
	}

	c.String(http.StatusOK, "%d Articles found", total)
}

func (h *handlers) serverError(c *gin.Context, msg string, err error) {
	h.log.ErrorObj(msg, "api_error", map[string]any{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": "Internal error"})
}

// invalidPage reports a page number past the end of the index, distinct from
// an empty-but-valid page.
func invalidPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": false, "message": "Invalid page"})
}

// intQuery parses a positive integer query parameter with a default. A
// malformed or non-positive value reports !ok.
func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// requestURL rebuilds the full URL of the current request.
func requestURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}
