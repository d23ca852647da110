package routes

import (
	"os"
	"strings"

	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/config"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/controllers"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Line-User-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	{
		// Cron triggers, called by the external scheduler
		api.GET("/cron/send-reminders", controllers.SendReminders)
		api.GET("/cron/send-daily-notifications", controllers.SendDailyNotifications)
		api.POST("/send-daily-notifications", controllers.SendDailyNotificationsManual)

		// Public catalog and availability for the booking UI
		api.GET("/services", controllers.GetServices)
		api.GET("/services/:id", controllers.GetService)
		api.GET("/availability", controllers.GetAvailability)
		api.GET("/rewards", controllers.ListRewards)

		// Customer routes, identified by the LIFF LINE user id
		liff := api.Group("")
		liff.Use(utils.LineIdentityMiddleware())
		{
			liff.POST("/bookings", controllers.CreateBooking)
			liff.GET("/bookings", controllers.MyBookings)
			liff.POST("/appointments/:id/confirm", controllers.ConfirmMyAppointment)
			liff.POST("/appointments/:id/cancel", controllers.CancelMyAppointment)
			liff.POST("/rewards/:id/redeem", controllers.RedeemReward)
			liff.GET("/me/profile", controllers.MyProfile)
			liff.GET("/me/coupons", controllers.MyCoupons)
			liff.POST("/line/link", controllers.LinkAccount)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(utils.AuthMiddleware())
		{
			appointments := admin.Group("/appointments")
			{
				appointments.GET("", controllers.ListAppointments)
				appointments.POST("", controllers.CreateManualAppointment)
				appointments.GET("/:id", controllers.GetAppointment)
				appointments.PUT("/:id", controllers.UpdateAppointment)
				appointments.POST("/:id/confirm", controllers.ConfirmAppointment)
				appointments.POST("/:id/start", controllers.StartAppointment)
				appointments.POST("/:id/complete", controllers.CompleteAppointment)
				appointments.POST("/:id/cancel", controllers.CancelAppointment)
			}

			servicesGroup := admin.Group("/services")
			{
				servicesGroup.POST("", controllers.CreateService)
				servicesGroup.PUT("/:id", controllers.UpdateService)
				servicesGroup.DELETE("/:id", controllers.DeleteService)
				servicesGroup.POST("/:id/addons", controllers.CreateServiceAddon)
				servicesGroup.DELETE("/:id/addons/:addonId", controllers.DeleteServiceAddon)
			}

			employees := admin.Group("/employees")
			{
				employees.GET("", controllers.GetEmployees)
				employees.POST("", controllers.AddEmployee)
				employees.PUT("/:id", controllers.UpdateEmployee)
				employees.DELETE("/:id", controllers.DeleteEmployee)
			}

			rewards := admin.Group("/rewards")
			{
				rewards.GET("", controllers.GetRewards)
				rewards.POST("", controllers.CreateReward)
				rewards.PUT("/:id", controllers.UpdateReward)
				rewards.DELETE("/:id", controllers.DeleteReward)
			}

			admin.GET("/settings", controllers.GetSettings)
			admin.PUT("/settings/points", controllers.UpdatePointSettings)
			admin.PUT("/settings/notifications", controllers.UpdateNotificationSettings)

			admin.GET("/notifications", controllers.GetNotifications)
			admin.PUT("/notifications/:id/read", controllers.MarkNotificationRead)
		}
	}

	return r
}
