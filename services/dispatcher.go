// services/dispatcher.go
package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"gorm.io/gorm"
)

// Event categories, mapped one-to-one onto message templates.
const (
	EventNewBooking        = "new-booking"
	EventConfirmed         = "appointment-confirmed"
	EventPaymentRequest    = "payment-request"
	EventCompleted         = "service-completed"
	EventReviewRequest     = "review-request"
	EventReminder          = "appointment-reminder"
	EventDailyDigest       = "daily-appointment-digest"
	EventAdminStatusChange = "admin-status-change"
)

// Event is one state transition or scheduled occurrence to notify about.
type Event struct {
	Category      string
	Appointment   *models.Appointment
	PointsAwarded int
	Note          string
}

// Recipient addresses one outbound push. An empty LineUserID means the
// recipient cannot be reached and is skipped, not failed.
type Recipient struct {
	Name       string
	LineUserID string
}

type DispatchResult struct {
	Recipient Recipient
	Success   bool
	Skipped   bool
	Err       error
}

// DispatchSummary aggregates per-recipient outcomes for caller-side logging.
type DispatchSummary struct {
	Results []DispatchResult
	Sent    int
	Failed  int
	Skipped int
}

// Message is a vendor-neutral outbound payload. When Title is empty the
// pusher sends Text as plain text; otherwise it renders a template with a
// header, labeled body rows, an optional price line and an optional action.
type Message struct {
	AltText string
	Title   string
	Rows    []MessageRow
	Price   string
	Action  *MessageAction
	Text    string
}

type MessageRow struct {
	Label string
	Value string
}

type MessageAction struct {
	Label string
	URI   string
}

// Pusher is the outbound messaging gateway contract.
type Pusher interface {
	Push(ctx context.Context, to string, msg Message) error
}

// Dispatcher fans an event out to recipients, isolating per-recipient
// failures. A push failure never propagates to the business mutation that
// triggered the event; callers only see the aggregate summary.
type Dispatcher struct {
	db     *gorm.DB
	pusher Pusher
}

func NewDispatcher(db *gorm.DB, pusher Pusher) *Dispatcher {
	return &Dispatcher{db: db, pusher: pusher}
}

// WithPusher returns a dispatcher sending through p, sharing the same db.
// Used by the manual digest trigger's mock mode.
func (d *Dispatcher) WithPusher(p Pusher) *Dispatcher {
	return &Dispatcher{db: d.db, pusher: p}
}

// Dispatch attempts exactly one push per reachable recipient and records a
// delivery log row per attempt.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event, recipients []Recipient) DispatchSummary {
	msg := buildMessage(event)
	summary := DispatchSummary{}

	for _, r := range recipients {
		res := DispatchResult{Recipient: r}
		if r.LineUserID == "" {
			res.Skipped = true
			summary.Skipped++
			d.logDelivery(event.Category, "", "skipped", "")
			summary.Results = append(summary.Results, res)
			continue
		}

		if err := d.pusher.Push(ctx, r.LineUserID, msg); err != nil {
			log.Printf("Failed to push %s to %s: %v", event.Category, r.LineUserID, err)
			res.Err = fmt.Errorf("%w: %v", ErrGatewayFailure, err)
			summary.Failed++
			d.logDelivery(event.Category, r.LineUserID, "failed", err.Error())
		} else {
			res.Success = true
			summary.Sent++
			d.logDelivery(event.Category, r.LineUserID, "sent", "")
		}
		summary.Results = append(summary.Results, res)
	}

	return summary
}

// NotifyAdmin writes an inbox entry and, when ADMIN_LINE_USER_ID is
// configured, pushes the same text to the admin's LINE account.
func (d *Dispatcher) NotifyAdmin(ctx context.Context, category, message string) {
	inbox := models.Notification{Category: category, Message: message}
	if err := d.db.Create(&inbox).Error; err != nil {
		log.Printf("Failed to create admin notification: %v", err)
	}

	if adminID := os.Getenv("ADMIN_LINE_USER_ID"); adminID != "" {
		d.Dispatch(ctx, Event{Category: category, Note: message}, []Recipient{{Name: "admin", LineUserID: adminID}})
	}
}

func (d *Dispatcher) logDelivery(category, recipient, status, errMsg string) {
	entry := models.DeliveryLog{
		Category:     category,
		Recipient:    recipient,
		Status:       status,
		ErrorMessage: errMsg,
		SentAt:       time.Now(),
	}
	if err := d.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to log delivery for %s: %v", category, err)
	}
}

func buildMessage(event Event) Message {
	a := event.Appointment
	if a == nil {
		return Message{AltText: event.Note, Text: event.Note}
	}

	slotRows := []MessageRow{
		{Label: "Service", Value: a.ServiceName},
		{Label: "Date", Value: a.Date},
		{Label: "Time", Value: a.Time},
	}
	price := fmt.Sprintf("%.2f", a.TotalPrice)

	switch event.Category {
	case EventNewBooking:
		return Message{
			AltText: "New booking #" + caseLabel(a),
			Title:   "New booking",
			Rows: append([]MessageRow{
				{Label: "Case", Value: caseLabel(a)},
				{Label: "Customer", Value: a.CustomerName},
			}, slotRows...),
			Price: price,
		}
	case EventConfirmed:
		return Message{
			AltText: "Your appointment is confirmed",
			Title:   "Appointment confirmed",
			Rows:    slotRows,
			Price:   price,
			Action:  &MessageAction{Label: "View booking", URI: liffURL("/bookings/" + a.ID.String())},
		}
	case EventPaymentRequest:
		return Message{
			AltText: "Payment requested",
			Title:   "Payment request",
			Rows:    slotRows,
			Price:   fmt.Sprintf("%.2f", a.PaymentAmount),
			Action:  &MessageAction{Label: "Pay now", URI: liffURL("/payments/" + a.ID.String())},
		}
	case EventCompleted:
		rows := slotRows
		if event.PointsAwarded > 0 {
			rows = append(rows, MessageRow{Label: "Points earned", Value: fmt.Sprintf("%d", event.PointsAwarded)})
		}
		return Message{
			AltText: "Thank you for your visit",
			Title:   "Service completed",
			Rows:    rows,
			Price:   fmt.Sprintf("%.2f", a.PaymentAmount),
			Action:  &MessageAction{Label: "My points", URI: liffURL("/points")},
		}
	case EventReviewRequest:
		return Message{
			AltText: "How was your visit?",
			Title:   "Leave a review",
			Rows:    []MessageRow{{Label: "Service", Value: a.ServiceName}},
			Action:  &MessageAction{Label: "Write review", URI: liffURL("/reviews/" + a.ID.String())},
		}
	case EventReminder:
		return Message{
			AltText: "Appointment reminder",
			Title:   "Upcoming appointment",
			Rows:    slotRows,
			Action:  &MessageAction{Label: "View booking", URI: liffURL("/bookings/" + a.ID.String())},
		}
	case EventDailyDigest:
		return Message{
			AltText: "You have an appointment today",
			Title:   "Today's appointment",
			Rows:    slotRows,
			Action:  &MessageAction{Label: "View booking", URI: liffURL("/bookings/" + a.ID.String())},
		}
	default:
		text := event.Note
		if text == "" {
			text = fmt.Sprintf("Appointment %s is now %s", caseLabel(a), a.Status)
		}
		return Message{AltText: text, Text: text}
	}
}

func caseLabel(a *models.Appointment) string {
	return fmt.Sprintf("%s-%03d", a.Date, a.CaseNumber)
}

func liffURL(path string) string {
	base := os.Getenv("LIFF_BASE_URL")
	if base == "" {
		base = "https://liff.line.me"
	}
	return base + path
}
