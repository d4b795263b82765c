package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IncrementPageview 为文章浏览计数加一并返回最新总数。
//
// The client calls this after the article content has rendered, so the count
// never blocks the initial page. Every render counts: reloads by the same
// viewer increment again, which is the intended behavior.
func (a *API) IncrementPageview(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid article id")
		return
	}

	count, err := a.pageviews.Increment(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to record pageview")
		return
	}

	c.JSON(http.StatusOK, gin.H{"pageviews": count})
}
