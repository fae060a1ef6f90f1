package router

import (
	"time"

	"fintrack/api"
	"fintrack/config"
	_ "fintrack/docs"
	"fintrack/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			// 登录接口限流：每 IP 每分钟最多 10 次
			auth.POST("/login", middleware.LoginRateLimit(10, time.Minute), authHandler.Login)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 收入相关
			incomeHandler := api.NewIncomeHandler()
			incomes := authorized.Group("/incomes")
			{
				incomes.POST("", incomeHandler.Create)
				incomes.GET("", incomeHandler.List)
				incomes.GET("/:id", incomeHandler.Get)
			}

			// 支出相关
			expenseHandler := api.NewExpenseHandler()
			expenses := authorized.Group("/expenses")
			{
				expenses.POST("", expenseHandler.Create)
				expenses.GET("", expenseHandler.List)
				expenses.GET("/:id", expenseHandler.Get)
			}

			// 储蓄流水相关
			savingHandler := api.NewSavingHandler()
			savings := authorized.Group("/savings")
			{
				savings.POST("", savingHandler.Create)
				savings.GET("", savingHandler.List)
			}

			// 借入相关
			borrowHandler := api.NewBorrowHandler()
			borrows := authorized.Group("/borrows")
			{
				borrows.POST("", borrowHandler.Create)
				borrows.GET("", borrowHandler.List)
				borrows.GET("/:id", borrowHandler.Get)
				borrows.PUT("/:id", borrowHandler.Update)
				borrows.DELETE("/:id", borrowHandler.Delete)
				borrows.POST("/:id/repayments", borrowHandler.Repay)
				borrows.GET("/:id/repayments", borrowHandler.ListRepayments)
			}

			// 借出相关
			lendHandler := api.NewLendHandler()
			lends := authorized.Group("/lends")
			{
				lends.POST("", lendHandler.Create)
				lends.GET("", lendHandler.List)
				lends.GET("/:id", lendHandler.Get)
				lends.PUT("/:id", lendHandler.Update)
				lends.DELETE("/:id", lendHandler.Delete)
				lends.POST("/:id/repayments", lendHandler.Repay)
				lends.GET("/:id/repayments", lendHandler.ListRepayments)
			}

			// 还款总表
			repaymentHandler := api.NewRepaymentHandler()
			authorized.GET("/repayments", repaymentHandler.List)

			// 首页汇总与余额
			dashboardHandler := api.NewDashboardHandler()
			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("/summary", dashboardHandler.Summary)
				dashboard.GET("/wallet", dashboardHandler.WalletBalance)
				dashboard.GET("/savings", dashboardHandler.SavingsBalance)
				dashboard.POST("/reconcile", dashboardHandler.Reconcile)
			}

			// 提醒
			notificationHandler := api.NewNotificationHandler()
			authorized.GET("/notifications", notificationHandler.List)

			// 报表相关
			reportHandler := api.NewReportHandler()
			reports := authorized.Group("/reports")
			{
				reports.POST("", reportHandler.Generate)
				reports.GET("", reportHandler.List)
				reports.GET("/summary", reportHandler.Summary)
			}

			// 导出相关
			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
