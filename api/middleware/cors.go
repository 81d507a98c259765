package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/config"
)

type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
}

func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", TraceIDHeader},
		ExposeHeaders:    []string{TraceIDHeader},
		AllowCredentials: true,
	}
}

// CORSFromConfig overlays configured values on the defaults.
func CORSFromConfig(cfg config.CORSConfig) CORSConfig {
	out := DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		out.AllowOrigins = cfg.AllowedOrigins
	}
	if len(cfg.AllowedMethods) > 0 {
		out.AllowMethods = cfg.AllowedMethods
	}
	if len(cfg.AllowedHeaders) > 0 {
		out.AllowHeaders = cfg.AllowedHeaders
	}
	if len(cfg.ExposedHeaders) > 0 {
		out.ExposeHeaders = cfg.ExposedHeaders
	}
	out.AllowCredentials = cfg.AllowCredentials
	return out
}

func CORS(cfg CORSConfig) gin.HandlerFunc {
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	exposed := strings.Join(cfg.ExposeHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		wildcard := false
		for _, o := range cfg.AllowOrigins {
			if o == "*" {
				wildcard = true
			}
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed {
			switch {
			case origin != "":
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			case wildcard:
				c.Header("Access-Control-Allow-Origin", "*")
			}
		}

		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Access-Control-Expose-Headers", exposed)

		if cfg.AllowCredentials && origin != "" {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
