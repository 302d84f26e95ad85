package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func getStringFromCtx(c *gin.Context, key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func getUserAndRole(c *gin.Context) (userID, role string) {
	if s, ok := getStringFromCtx(c, "user_id"); ok {
		userID = s
	}
	if s, ok := getStringFromCtx(c, "role"); ok {
		role = s
	}
	return
}

func queryInt(c *gin.Context, key string, def int) int {
	if s := c.Query(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// paging caps limit so a single request cannot dump the whole table.
func paging(c *gin.Context) (limit, offset int) {
	limit = queryInt(c, "limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset = queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return
}
