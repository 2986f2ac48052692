package handlers

import "github.com/gin-gonic/gin"

// Routes bundles the API handlers for registration.
type Routes struct {
	Posts      *PostsHandler
	Accounts   *AccountsHandler
	Auth       *AuthHandler
	AI         *AIHandler
	Automation *AutomationHandler
}

// Register mounts every API route on the router.
func (r Routes) Register(app *gin.Engine) {
	api := app.Group("/api")

	api.GET("/posts", r.Posts.List)
	api.POST("/posts", r.Posts.Create)
	api.GET("/posts/:id", r.Posts.Get)
	api.PUT("/posts/:id", r.Posts.Update)
	api.DELETE("/posts/:id", r.Posts.Delete)

	api.GET("/accounts", r.Accounts.List)
	api.POST("/accounts/connect", r.Accounts.Connect)
	api.POST("/accounts/disconnect", r.Accounts.Disconnect)

	api.POST("/auth/login", r.Auth.Login)
	api.GET("/auth/:platform", r.Auth.Authorize)
	api.GET("/auth/:platform/callback", r.Auth.Callback)

	api.POST("/ai/generate", r.AI.Generate)
	api.POST("/ai/score", r.AI.Score)
	api.POST("/ai/trends", r.AI.Trends)
	api.POST("/ai/hashtags", r.AI.Hashtags)
	api.POST("/ai/repurpose", r.AI.Repurpose)
	api.POST("/ai/image", r.AI.Image)

	api.POST("/automation/run", r.Automation.Run)
}
