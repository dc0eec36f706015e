package http

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dkeye/flightrelay/internal/adapters/signal"
	"github.com/dkeye/flightrelay/internal/app/orch"
	"github.com/dkeye/flightrelay/internal/config"
	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const clientTokenKey = "ct"

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware keeps a per-browser token in the cookie session so
// reconnects of the same client can be correlated in the logs.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save client token")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("RelaySessions", store))
	r.Use(ClientTokenMiddleware())

	ctrl := signal.NewSignalWSController(o, signal.Settings{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		PongWait:   cfg.PongWait,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	})
	ws := func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	}

	hasStatic := dirExists(cfg.StaticPath)
	if hasStatic {
		r.Static("/static", cfg.StaticPath)
	}
	// Hosts and viewers historically dial the bare origin, so / upgrades too.
	r.GET("/", func(c *gin.Context) {
		if websocket.IsWebSocketUpgrade(c.Request) {
			ws(c)
			return
		}
		if hasStatic {
			c.File(filepath.Join(cfg.StaticPath, "index.html"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"service": "flightrelay"})
	})
	r.GET("/ws", ws)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": o.Registry.Count()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Bool("static_enabled", hasStatic).Msg("router setup")

	api := r.Group("/api")

	// GET /api/sessions/:id: session status, never passwords
	api.GET("/sessions/:id", func(c *gin.Context) {
		key := domain.SessionKey(c.Param("id"))
		sess, ok := o.Registry.Lookup(key)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"uniqueId": key, "exists": false})
			return
		}
		info := sess.Info()
		c.JSON(http.StatusOK, gin.H{
			"uniqueId": info.UniqueID,
			"exists":   true,
			"pcOnline": info.PCOnline,
			"viewers":  info.Viewers,
		})
	})

	return r
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
