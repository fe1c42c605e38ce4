/*
 * @Description: 写操作按客户端 IP 限流
 */
package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/binary-blogs/binary-blogs/pkg/response"
)

const (
	// visitorTTL 超过这个时间没有请求的 IP 会被清理
	visitorTTL    = 10 * time.Minute
	sweepInterval = 5 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorLimiters 为每个 IP 维护一个令牌桶，空闲的桶在后续访问时顺带清理
type visitorLimiters struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newVisitorLimiters(perMinute, burst int) *visitorLimiters {
	return &visitorLimiters{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		now:      time.Now,
	}
}

// allow 判断该 IP 是否放行，拒绝时返回需要等待的时间
func (v *visitorLimiters) allow(ip string) (bool, time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if now.Sub(v.lastSweep) > sweepInterval {
		for key, vis := range v.visitors {
			if now.Sub(vis.lastSeen) > visitorTTL {
				delete(v.visitors, key)
			}
		}
		v.lastSweep = now
	}

	vis, ok := v.visitors[ip]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.limit, v.burst)}
		v.visitors[ip] = vis
	}
	vis.lastSeen = now

	r := vis.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// getClientIP 依次取 X-Real-IP、X-Forwarded-For 的第一段和 RemoteAddr
func getClientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		first = strings.TrimSpace(first)
		if host, _, err := net.SplitHostPort(first); err == nil {
			return host
		}
		return first
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}

// WriteRateLimit 限制写操作的频率，读请求不计数。perMinute <= 0 时不限流。
func WriteRateLimit(perMinute, burst int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}
	limiters := newVisitorLimiters(perMinute, burst)

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if ok, wait := limiters.allow(getClientIP(c)); !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			response.Fail(c, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Next()
	}
}
