package controllers

import (
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/services"
	"gorm.io/gorm"
)

var (
	dispatcher     *services.Dispatcher
	appointmentSvc *services.AppointmentService
	loyaltySvc     *services.LoyaltyService
	digestSvc      *services.DigestService
)

// InitServices wires the shared service instances; call once from main
// after the database is connected.
func InitServices(db *gorm.DB, pusher services.Pusher) {
	dispatcher = services.NewDispatcher(db, pusher)
	loyaltySvc = services.NewLoyaltyService(db)
	appointmentSvc = services.NewAppointmentService(db, dispatcher, loyaltySvc)
	digestSvc = services.NewDigestService(db, dispatcher)
}

// Digests exposes the digest service for the cron scheduler.
func Digests() *services.DigestService {
	return digestSvc
}
