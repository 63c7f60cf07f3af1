package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tallyhq/tally/internal/models"
)

// idLength is the length of a hex-encoded record identifier.
const idLength = 24

// checkID rejects identifiers of the wrong length with 400. Well-sized but
// malformed ids reach the store and resolve to not found.
func checkID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if len(id) != idLength {
		respondStatus(c, http.StatusBadRequest)

		return "", false
	}

	return id, true
}

func parseLimit(s string, fallback, maxLimit int64) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return fallback
	}

	return min(v, maxLimit)
}

func parseOffset(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0
	}

	return min(v, models.MaxListOffset)
}

// listOptions reads limit, offset and orderBy from the query string.
func listOptions(c *gin.Context) models.ListOptions {
	return models.ListOptions{
		Limit:   parseLimit(c.Query("limit"), models.MaxListLimit, models.MaxListLimit),
		Offset:  parseOffset(c.Query("offset")),
		OrderBy: strings.TrimSpace(c.Query("orderBy")),
	}
}

// splitList parses a comma separated query value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
