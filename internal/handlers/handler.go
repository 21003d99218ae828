package handlers

import (
	"expense_tracker/internal/logger"
	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	origins  []string // browser origins allowed to open websockets; empty or "*" allows any
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, origins []string) *Handler {
	return &Handler{services: services, log: log, origins: origins}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Bearer-protected endpoints
	h.registerAPIRoutes(router)

	// Summary stream; the token travels in the query string
	router.GET("/ws/summary", h.wsSummary)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	r.POST("/usersignup", h.signUp)
	r.POST("/userlogin", h.signIn)
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("", h.userIdMiddleware)
	{
		api.POST("/logout", h.logout)
		h.registerExpenseRoutes(api)
		api.GET("/profile/:userId", h.getProfile)
		api.GET("/activity", h.getActivity)
	}
}

func (h *Handler) registerExpenseRoutes(api *gin.RouterGroup) {
	api.POST("/recordexpense", h.recordExpense)

	expenses := api.Group("/expenses")
	{
		expenses.GET("", h.listExpenses)
		expenses.GET("/summary", h.getSummary)
		expenses.PUT("/:id", h.updateExpense)
		expenses.DELETE("/:id", h.deleteExpense)
	}
}
