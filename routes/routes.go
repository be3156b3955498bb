package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sistemas-fafin-lab/labpoints-be/controllers"
	"github.com/sistemas-fafin-lab/labpoints-be/middleware"
	"github.com/sistemas-fafin-lab/labpoints-be/services"
	"github.com/sistemas-fafin-lab/labpoints-be/websocket"
)

func SetupRoutes(hub *websocket.Hub) *gin.Engine {
	r := gin.Default()

	var notifier services.Notifier
	if hub != nil {
		notifier = websocket.NewHubNotifier(hub)
	}

	// Shared services
	ledgerService := services.NewLedgerService(notifier)
	assignmentService := services.NewAssignmentService(ledgerService, services.NewApproverPolicy(), notifier)
	rewardService := services.NewRewardService(ledgerService, notifier)

	// Initialize controllers
	authController := controllers.NewAuthController()
	userController := controllers.NewUserController(ledgerService, rewardService)
	assignmentController := controllers.NewAssignmentController(assignmentService)
	adminController := controllers.NewAdminController(ledgerService, assignmentService)
	dashboardController := controllers.NewDashboardController()

	// Public routes
	public := r.Group("/api/v1")
	{
		public.POST("/auth/login", authController.Login)
		public.POST("/auth/register", authController.Register)
	}

	// Protected routes
	protected := r.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/profile", userController.GetProfile)
		protected.GET("/balance", userController.GetBalance)
		protected.GET("/ledger", userController.GetLedger)
		protected.GET("/rewards", userController.GetRewards)
		protected.POST("/rewards/:id/redeem", userController.RedeemReward)
		protected.GET("/redemptions", userController.GetRedemptions)

		if hub != nil {
			protected.GET("/ws", websocket.HandleWebSocket(hub))
		}
	}

	// Assignment workflow: gestores and adms only
	assignments := r.Group("/api/v1")
	assignments.Use(middleware.AuthMiddleware())
	assignments.Use(middleware.GestorOrAdmin())
	{
		assignments.POST("/assignments", assignmentController.CreateAssignment)
		assignments.GET("/assignments/pending", assignmentController.GetPendingForMe)
		assignments.PUT("/assignments/:id/approve", assignmentController.ApproveAssignment)
		assignments.PUT("/assignments/:id/reject", assignmentController.RejectAssignment)
		assignments.GET("/assignments/history", assignmentController.GetHistory)
	}

	// Admin only routes
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminOnly())
	{
		// User management
		admin.POST("/users", adminController.CreateUser)
		admin.GET("/users", adminController.GetUsers)

		// Direct point grants and debits
		admin.POST("/points", adminController.AdjustPoints)

		// Assignment oversight
		admin.GET("/assignments/pending", adminController.GetAllPending)

		// Ledger reconciliation
		admin.GET("/ledger/verify/:id", adminController.VerifyUserLedger)

		// Dashboard
		admin.GET("/dashboard", dashboardController.GetStats)
	}

	return r
}
