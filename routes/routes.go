package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	config "github.com/kamau/chamacircle-go/config"
	controllers "github.com/kamau/chamacircle-go/controllers"
	middleware "github.com/kamau/chamacircle-go/middleware"
	services "github.com/kamau/chamacircle-go/services"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	groupSvc := services.NewGroupService(cfg.Store, cfg.Store, cfg.Store)
	paymentSvc := services.NewPaymentService(cfg.Store, cfg.Store, cfg.Store)
	contribSvc := services.NewContributionService(cfg.Store)

	// public
	r.POST("/auth/register", controllers.Register(cfg))
	r.POST("/auth/login", controllers.Login(cfg))
	r.POST("/auth/refresh", controllers.RefreshToken(cfg))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// protected
	auth := middleware.AuthMiddleware(cfg)

	users := r.Group("/users")
	users.Use(auth)
	{
		users.GET("/me", controllers.Me(cfg))
	}

	// current user's own resources
	my := r.Group("/my")
	my.Use(auth)
	{
		my.GET("/groups", controllers.MyGroups(cfg, groupSvc))
		my.GET("/payments", controllers.MyPayments(cfg, paymentSvc))
		my.GET("/contributions", controllers.MyContributions(cfg, contribSvc))
	}

	groups := r.Group("/groups")
	groups.Use(auth)
	{
		groups.POST("", middleware.AdminOnly(), controllers.CreateGroup(cfg, groupSvc))
		groups.GET("", controllers.ListGroups(cfg, groupSvc))
		groups.GET("/:id", controllers.GetGroup(cfg, groupSvc))
		groups.POST("/:id/join", controllers.JoinGroup(cfg, groupSvc))
		groups.GET("/:id/next-payout", controllers.NextPayout(cfg, groupSvc))
	}

	payments := r.Group("/payments")
	payments.Use(auth)
	{
		payments.POST("", controllers.CreatePayment(cfg, paymentSvc))
		payments.GET("/:id", controllers.GetPayment(cfg, paymentSvc))
	}

	sermons := r.Group("/sermons")
	sermons.Use(auth)
	{
		sermons.GET("", controllers.ListSermons(cfg))
		sermons.GET("/:id", controllers.GetSermon(cfg))
		sermons.POST("/:id/play", controllers.RecordSermonPlay(cfg))
		sermons.POST("/:id/download", controllers.RecordSermonDownload(cfg))
	}

	// admin
	admin := r.Group("/admin")
	admin.Use(auth, middleware.AdminOnly())
	{
		admin.GET("/users", controllers.ListUsers(cfg))
		admin.PATCH("/users/:id/promote", controllers.SetAdminStatus(cfg, true))
		admin.PATCH("/users/:id/demote", controllers.SetAdminStatus(cfg, false))
		admin.POST("/users/promote-by-email", controllers.SetAdminStatusByEmail(cfg, true))
		admin.POST("/users/demote-by-email", controllers.SetAdminStatusByEmail(cfg, false))

		admin.POST("/groups/:id/members", controllers.AddUserToGroup(cfg, groupSvc))
		admin.DELETE("/groups/:id/members/:userId", controllers.RemoveUserFromGroup(cfg, groupSvc))
		admin.POST("/groups/:id/assign-payout", controllers.AssignNextPayout(cfg, groupSvc))
		admin.POST("/groups/:id/advance", controllers.AdvanceGroupCycle(cfg, groupSvc))
		admin.DELETE("/groups/:id", controllers.DeleteGroup(cfg, groupSvc))

		admin.GET("/payments", controllers.ListPayments(cfg, paymentSvc))
		admin.GET("/payments/pending", controllers.PendingPayments(cfg, paymentSvc))
		admin.PATCH("/payments/:id/status", controllers.UpdatePaymentStatus(cfg, paymentSvc))

		admin.GET("/transactions", controllers.ListTransactions(cfg))

		admin.POST("/sermons", controllers.CreateSermon(cfg))
		admin.PATCH("/sermons/:id", controllers.UpdateSermon(cfg))
		admin.DELETE("/sermons/:id", controllers.DeleteSermon(cfg))
	}
}
