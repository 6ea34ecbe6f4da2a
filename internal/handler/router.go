package handler

import (
	"irma-verse/internal/model"
	"irma-verse/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// Router 汇总各处理器并注册路由
type Router struct {
	JWT       *jwt.JWTService
	Users     *UserHandler
	Friends   *FriendHandler
	Members   *MemberHandler
	Chat      *ChatHandler
	WebSocket gin.HandlerFunc
}

// Register 注册全部 /api 路由、/ws 与 /health
func (rt *Router) Register(r *gin.Engine) {
	r.GET("/health", Health)
	if rt.WebSocket != nil {
		r.GET("/ws", rt.WebSocket)
	}

	api := r.Group("/api")
	auth := rt.JWT.AuthMiddleware()

	// 公开接口
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", rt.Users.Register)
		authGroup.POST("/login", rt.Users.Login)
		authGroup.POST("/logout", auth, rt.Users.Logout)
	}
	api.GET("/members", rt.Members.Members)
	api.GET("/members/export", auth, jwt.RequireRole(model.RoleAdmin), rt.Members.Export)
	api.GET("/instructors", rt.Members.Instructors)

	users := api.Group("/users", auth)
	{
		users.GET("/me", rt.Users.Me)
		users.PUT("/me", rt.Users.UpdateMe)
		users.GET("/:userId/presence", rt.Users.Presence)
	}

	friends := api.Group("/friends", auth)
	{
		friends.POST("", rt.Friends.Request)
		friends.GET("", rt.Friends.Incoming)
		friends.DELETE("", rt.Friends.Withdraw)
		friends.POST("/accept", rt.Friends.Accept)
		friends.POST("/reject", rt.Friends.Decline)
		friends.GET("/list", rt.Friends.List)
		friends.GET("/:userId", rt.Friends.Mutual)
		friends.DELETE("/:userId", rt.Friends.Unfriend)
	}

	chat := api.Group("/chat", auth)
	{
		chat.GET("/threads", rt.Chat.Threads)
		chat.POST("/threads/:instructorId/select", rt.Chat.Select)
		chat.POST("/threads/:instructorId/messages", rt.Chat.Send)
		chat.POST("/reset", rt.Chat.Reset)
	}
}
