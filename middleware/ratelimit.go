package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// LoginRateLimit 登录限流：同一 IP 在 window 内最多 maxAttempts 次，
// 超出返回 429。计数只存内存，进程重启即清零，够用于单实例部署。
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	type attempts struct {
		times []time.Time
	}
	var (
		mu   sync.Mutex
		byIP = make(map[string]*attempts)
	)
	prune := func(a *attempts, cutoff time.Time) {
		kept := a.times[:0]
		for _, t := range a.times {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		a.times = kept
	}

	// 后台定期清掉窗口外的 IP，防止 map 无限增长
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			cutoff := time.Now().Add(-window)
			for ip, a := range byIP {
				prune(a, cutoff)
				if len(a.times) == 0 {
					delete(byIP, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		a, ok := byIP[ip]
		if !ok {
			a = &attempts{}
			byIP[ip] = a
		}
		prune(a, now.Add(-window))
		if len(a.times) >= maxAttempts {
			mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "登录过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}
		a.times = append(a.times, now)
		mu.Unlock()

		c.Next()
	}
}
