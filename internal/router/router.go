package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/wikimasters/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret, uploadURLPath, uploadDir string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("wikimasters_session", store))

	// 上传的封面图片走静态文件服务
	r.Static(uploadURLPath, "./"+uploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/signup", api.Signup)
			auth.POST("/signin", api.Signin)
			auth.POST("/signout", api.Signout)
			auth.GET("/me", handler.AuthRequired(), api.Me)
		}

		// 公开读路径
		apiGroup.GET("/articles", api.ListArticles)
		apiGroup.GET("/articles/:id", api.GetArticle)
		apiGroup.POST("/articles/:id/pageview", api.IncrementPageview)

		// 需要认证的写路径
		authed := apiGroup.Group("")
		authed.Use(handler.AuthRequired())
		{
			authed.POST("/articles", api.CreateArticle)
			authed.PUT("/articles/:id", api.UpdateArticle)
			authed.DELETE("/articles/:id", api.DeleteArticle)
			authed.POST("/summaries", api.GenerateSummary)
			authed.POST("/uploads", api.UploadImage)
		}
	}

	return r
}
