// Package gateway is the thin edge in front of the admin API. It forwards
// requests unchanged except for one compatibility shim: legacy task
// creation bodies are rewritten to the current shape before forwarding.
package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type Gateway struct {
	upstream *url.URL
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	log      *logrus.Logger
}

func New(upstreamURL string, log *logrus.Logger) (*Gateway, error) {
	u, err := url.Parse(upstreamURL)
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "upstream",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	return &Gateway{
		upstream: u,
		client:   &http.Client{Timeout: 15 * time.Second},
		breaker:  breaker,
		log:      log,
	}, nil
}

// Router builds the gateway's gin engine: every /api path is proxied.
func (g *Gateway) Router(mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.Any("/api/*path", g.Proxy)
	return r
}

// Proxy forwards the request to the upstream API, rewriting legacy task
// creation bodies on the way through.
func (g *Gateway) Proxy(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		g.respondProxyFailed(c, "failed to read request body")
		return
	}

	if c.Request.Method == http.MethodPost && c.Param("path") == "/tasks" {
		body = normalizeLegacyTask(body)
	}

	target := *g.upstream
	target.Path = "/api" + c.Param("path")
	target.RawQuery = c.Request.URL.RawQuery

	result, err := g.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(c.Request.Context(),
			c.Request.Method, target.String(), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header = c.Request.Header.Clone()
		return g.client.Do(req)
	})
	if err != nil {
		g.log.WithError(err).WithField("path", target.Path).Error("upstream request failed")
		g.respondProxyFailed(c, err.Error())
		return
	}

	resp := result.(*http.Response)
	defer resp.Body.Close()

	for key, values := range resp.Header {
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		g.log.WithError(err).Warn("streaming upstream response failed")
	}
}

func (g *Gateway) respondProxyFailed(c *gin.Context, detail string) {
	c.JSON(http.StatusBadGateway, gin.H{
		"error":  "proxy_failed",
		"detail": detail,
	})
}

// normalizeLegacyTask rewrites the pre-redesign creation shape
// {taskTitle, taskType, taskDate} into the current one. Already-current
// bodies and unparseable bodies pass through untouched.
func normalizeLegacyTask(body []byte) []byte {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return body
	}
	if _, ok := raw["taskTitle"]; !ok {
		return body
	}
	if _, ok := raw["taskType"]; !ok {
		return body
	}
	if _, ok := raw["taskDate"]; !ok {
		return body
	}

	out := map[string]any{}
	if title, ok := raw["taskTitle"].(string); ok {
		out["title"] = title
	}
	if note, ok := raw["note"].(string); ok {
		out["note"] = note
	}
	if date, ok := raw["taskDate"].(string); ok {
		if t, err := time.ParseInLocation("2006-01-02", date, time.Local); err == nil {
			out["due"] = t.UnixMilli()
		}
	}
	// The legacy client sent an assignee list; the store tracks one.
	if assignees, ok := raw["assignees"].([]any); ok && len(assignees) > 0 {
		if first, ok := assignees[0].(string); ok {
			out["assignedTo"] = first
		}
	}

	rewritten, err := json.Marshal(out)
	if err != nil {
		return body
	}
	return rewritten
}
