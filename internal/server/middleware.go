package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// LearnerHeader carries the learner identity set by the auth gateway.
const LearnerHeader = "X-Learner-ID"

const learnerKey = "learner_id"

func requireLearner() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(LearnerHeader))
		if id == "" {
			fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c.Set(learnerKey, id)
		c.Next()
	}
}

func learnerID(c *gin.Context) string {
	return c.GetString(learnerKey)
}
