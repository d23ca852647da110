package main

import (
	"fmt"
	"log"
	"os"

	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/config"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/controllers"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/routes"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Coupon{},
		&models.Reward{},
		&models.Service{},
		&models.ServiceAddon{},
		&models.Employee{},
		&models.Appointment{},
		&models.AppointmentAddon{},
		&models.SlotLock{},
		&models.Workorder{},
		&models.Notification{},
		&models.DeliveryLog{},
		&models.PointSettings{},
		&models.NotificationSettings{},
		&models.AppSettings{},
	)
}

func main() {
	pusher, err := services.NewLineClientFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize LINE client: %v", err)
	}
	controllers.InitServices(config.DB, pusher)

	scheduler := services.StartScheduler(controllers.Digests())
	defer scheduler.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
