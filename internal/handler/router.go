package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doit-app/challenge-arena-go/internal/middleware"
)

// Handlers bundles the route handlers the router mounts.
type Handlers struct {
	Auth    *AuthHandler
	Topics  *TopicHandler
	Videos  *VideoHandler
	Arena   *ArenaHandler
	Profile *ProfileHandler
	Health  *HealthHandler
}

// NewRouter builds the gin engine with all routes and middleware mounted.
// User-scoped and mutating routes sit behind the bearer auth middleware.
func NewRouter(h Handlers, auth *middleware.BearerAuth, allowedOrigin string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(allowedOrigin))

	router.GET("/healthz", h.Health.LivenessProbe)
	router.GET("/readyz", h.Health.ReadinessProbe)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	v1.POST("/auth/signup", h.Auth.SignUp)
	v1.POST("/auth/signin", h.Auth.SignIn)

	v1.GET("/topics", h.Topics.List)
	v1.GET("/topics/trending", h.Topics.Trending)

	v1.GET("/videos", h.Videos.List)
	v1.GET("/videos/top", h.Videos.Top)
	v1.GET("/videos/:id", h.Videos.Get)

	v1.GET("/challenge", h.Profile.Challenge)
	v1.GET("/leaderboard", h.Profile.Leaderboard)

	authed := v1.Group("", auth.Middleware())

	authed.POST("/auth/signout", h.Auth.SignOut)
	authed.GET("/auth/session", h.Auth.Session)

	authed.POST("/topics/regenerate", h.Topics.Regenerate)
	authed.PUT("/topics/selection", h.Topics.Select)
	authed.DELETE("/topics/selection", h.Topics.ClearSelection)

	authed.POST("/videos", h.Videos.Create)
	authed.DELETE("/videos/:id", h.Videos.Delete)
	authed.POST("/videos/:id/upvote", h.Videos.Upvote)
	authed.POST("/videos/:id/downvote", h.Videos.Downvote)
	authed.POST("/videos/:id/comments", h.Videos.AddComment)

	authed.POST("/arena/session", h.Arena.CreateSession)
	authed.GET("/arena/session", h.Arena.GetSession)
	authed.DELETE("/arena/session", h.Arena.DeleteSession)
	authed.POST("/arena/vote", h.Arena.Vote)
	authed.POST("/arena/next", h.Arena.Next)
	authed.POST("/arena/prev", h.Arena.Prev)

	authed.GET("/profile", h.Profile.Get)
	authed.PATCH("/profile", h.Profile.Update)
	authed.POST("/profile/avatar", h.Profile.UploadAvatar)

	return router
}
