package rest

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tictactoe_http_requests_total",
	Help: "Total HTTP requests by route and status",
}, []string{"route", "status"})

func instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
