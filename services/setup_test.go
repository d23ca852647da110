package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
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
	))
	return db
}

type pushRecord struct {
	To  string
	Msg services.Message
}

// fakePusher stands in for the LINE client; recipients listed in failFor
// get an error back.
type fakePusher struct {
	mu      sync.Mutex
	sent    []pushRecord
	failFor map[string]bool
}

func newFakePusher() *fakePusher {
	return &fakePusher{failFor: map[string]bool{}}
}

func (f *fakePusher) Push(ctx context.Context, to string, msg services.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return fmt.Errorf("simulated gateway failure for %s", to)
	}
	f.sent = append(f.sent, pushRecord{To: to, Msg: msg})
	return nil
}

func (f *fakePusher) sentTo(to string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rec := range f.sent {
		if rec.To == to {
			n++
		}
	}
	return n
}

type testEnv struct {
	db           *gorm.DB
	pusher       *fakePusher
	dispatcher   *services.Dispatcher
	appointments *services.AppointmentService
	loyalty      *services.LoyaltyService
	digests      *services.DigestService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	pusher := newFakePusher()
	dispatcher := services.NewDispatcher(db, pusher)
	loyalty := services.NewLoyaltyService(db)
	return &testEnv{
		db:           db,
		pusher:       pusher,
		dispatcher:   dispatcher,
		appointments: services.NewAppointmentService(db, dispatcher, loyalty),
		loyalty:      loyalty,
		digests:      services.NewDigestService(db, dispatcher),
	}
}

func seedService(t *testing.T, db *gorm.DB, price float64) models.Service {
	t.Helper()
	service := models.Service{Name: "Gel Manicure", Price: price, Duration: 60, IsActive: true}
	require.NoError(t, db.Create(&service).Error)
	return service
}

func seedProvider(t *testing.T, db *gorm.DB, name string) models.Employee {
	t.Helper()
	provider := models.Employee{Name: name, IsActive: true}
	require.NoError(t, db.Create(&provider).Error)
	return provider
}

func seedReward(t *testing.T, db *gorm.DB, pointsRequired int) models.Reward {
	t.Helper()
	reward := models.Reward{
		Name:           "10% off",
		PointsRequired: pointsRequired,
		DiscountType:   models.DiscountPercentage,
		DiscountValue:  10,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&reward).Error)
	return reward
}

func seedCustomer(t *testing.T, db *gorm.DB, points int, lineUserID *string) models.Customer {
	t.Helper()
	customer := models.Customer{
		Name:       "Nok",
		Phone:      "+66810000000",
		LineUserID: lineUserID,
		Points:     points,
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func strPtr(s string) *string { return &s }

func booking(service models.Service, lineUserID, date, slot string) services.BookingInput {
	in := services.BookingInput{
		CustomerName:  "Nok",
		CustomerPhone: "+66810000000",
		ServiceID:     service.ID,
		Date:          date,
		Time:          slot,
		Origin:        models.OriginOnline,
	}
	if lineUserID != "" {
		in.LineUserID = strPtr(lineUserID)
	}
	return in
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
