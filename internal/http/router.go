package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// Apply session middleware if enabled
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Apply auth middleware if enabled
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Register auth routes if auth service is available
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Book endpoints
	if cfg.BookStore != nil {
		booksController := NewBooksController(cfg.BookStore)
		router.POST("/api/books", booksController.CreateBook)
		router.GET("/api/books", booksController.ListBooks)
		router.GET("/api/books/:id", booksController.GetBook)
		router.PATCH("/api/books/:id", booksController.UpdateBook)
		router.DELETE("/api/books/:id", booksController.DeleteBook)
	}

	// Loan endpoints
	if cfg.LoanStore != nil {
		loansController := NewLoansController(cfg.LoanStore)
		router.POST("/api/loans/loan", loansController.LoanBook)
		router.POST("/api/loans/return", loansController.ReturnBook)
		router.GET("/api/loans", loansController.ListLoans)
		router.GET("/api/loans/:id", loansController.GetLoan)
		router.GET("/api/books/:id/loan", loansController.GetActiveLoan)
	}

	// Group endpoints
	if cfg.GroupStore != nil {
		groupsController := NewGroupsController(cfg.GroupStore)
		router.POST("/api/groups", groupsController.CreateGroup)
		router.GET("/api/groups", groupsController.ListGroups)
		router.GET("/api/groups/:id", groupsController.GetGroup)
	}

	// Invitation endpoints
	if cfg.InvitationStore != nil {
		invitationsController := NewInvitationsController(cfg.InvitationStore)
		router.POST("/api/groups/:id/invitations", invitationsController.CreateInvitation)
		router.GET("/api/groups/:id/invitations", invitationsController.ListInvitations)
		router.POST("/api/invitations/redeem", invitationsController.RedeemInvitation)
	}

	// Message endpoints
	if cfg.MessageStore != nil {
		messagesController := NewMessagesController(cfg.MessageStore)
		router.POST("/api/loans/:id/messages", messagesController.PostMessage)
		router.GET("/api/loans/:id/messages", messagesController.ListMessages)
	}

	return router
}
