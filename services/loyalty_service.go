// services/loyalty_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/utils"
	"gorm.io/gorm"
)

// LoyaltyService is the only writer of customer point balances. Debit,
// credit and merge all run inside single database transactions so a
// balance can never be observed mid-mutation.
type LoyaltyService struct {
	db *gorm.DB
}

func NewLoyaltyService(db *gorm.DB) *LoyaltyService {
	return &LoyaltyService{db: db}
}

// ProfileHints carries optional profile fields captured during LINE linking.
type ProfileHints struct {
	DisplayName string
}

// RedeemReward atomically debits the reward's point cost and mints one
// coupon. Both effects commit or neither does. Returns the new coupon id.
func (s *LoyaltyService) RedeemReward(ctx context.Context, customerID, rewardID uuid.UUID) (uuid.UUID, error) {
	var couponID uuid.UUID
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.Where("id = ?", customerID).First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
			}
			return err
		}

		var reward models.Reward
		if err := tx.Where("id = ? AND is_active = true", rewardID).First(&reward).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("reward %s: %w", rewardID, ErrNotFound)
			}
			return err
		}

		if customer.Points < reward.PointsRequired {
			return &InsufficientPointsError{Balance: customer.Points, Required: reward.PointsRequired}
		}

		// Conditional decrement: the WHERE clause re-checks the balance so
		// concurrent redemptions against the same customer serialize on the
		// row instead of racing the read above.
		res := tx.Model(&models.Customer{}).
			Where("id = ? AND points >= ?", customer.ID, reward.PointsRequired).
			Update("points", gorm.Expr("points - ?", reward.PointsRequired))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &InsufficientPointsError{Balance: customer.Points, Required: reward.PointsRequired}
		}

		coupon := models.Coupon{
			Code:          utils.GenerateRandomString(8),
			CustomerID:    customer.ID,
			RewardID:      reward.ID,
			Name:          reward.Name,
			Description:   reward.Description,
			DiscountType:  reward.DiscountType,
			DiscountValue: reward.DiscountValue,
			RedeemedAt:    time.Now(),
		}
		if err := tx.Create(&coupon).Error; err != nil {
			return err
		}
		couponID = coupon.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return couponID, nil
}

// MergePointsOnLink unifies a phone-keyed customer record with a LINE
// identity. The accumulated balance carries over unchanged; if a separate
// record already exists for the LINE identity, the two balances are summed
// into the phone record and the other record is retired. Calling it again
// with the same arguments is a no-op, so a retried link cannot double-count.
func (s *LoyaltyService) MergePointsOnLink(ctx context.Context, phone, lineUserID string, hints ProfileHints) (*models.Customer, error) {
	phone = utils.NormalizePhone(phone)
	var unified *models.Customer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Already linked by a previous call?
		var linked models.Customer
		err := tx.Where("phone = ? AND line_user_id IS NOT NULL", phone).First(&linked).Error
		if err == nil {
			if *linked.LineUserID == lineUserID {
				unified = &linked // idempotent success
				return nil
			}
			return fmt.Errorf("phone %s: %w", phone, ErrAlreadyLinked)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var phoneRecord models.Customer
		phoneFound := true
		if err := tx.Where("phone = ? AND line_user_id IS NULL", phone).First(&phoneRecord).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			phoneFound = false
		}

		var lineRecord models.Customer
		lineFound := true
		if err := tx.Where("line_user_id = ?", lineUserID).First(&lineRecord).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			lineFound = false
		}

		switch {
		case phoneFound && lineFound:
			// Sum both balances into the phone record and retire the other.
			// The retired record's LINE id has to be cleared first so its
			// unique index does not collide with the unified record.
			carried := lineRecord.Points
			if err := tx.Model(&models.Customer{}).Where("id = ?", lineRecord.ID).
				Updates(map[string]interface{}{"line_user_id": nil, "points": 0}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Customer{}, "id = ?", lineRecord.ID).Error; err != nil {
				return err
			}
			phoneRecord.LineUserID = &lineUserID
			phoneRecord.Points += carried
			phoneRecord.TotalVisits += lineRecord.TotalVisits
			applyHints(&phoneRecord, hints)
			if err := tx.Save(&phoneRecord).Error; err != nil {
				return err
			}
			unified = &phoneRecord

		case phoneFound:
			phoneRecord.LineUserID = &lineUserID
			applyHints(&phoneRecord, hints)
			if err := tx.Save(&phoneRecord).Error; err != nil {
				return err
			}
			unified = &phoneRecord

		case lineFound:
			// LINE-only record picking up a phone number.
			lineRecord.Phone = phone
			applyHints(&lineRecord, hints)
			if err := tx.Save(&lineRecord).Error; err != nil {
				return err
			}
			unified = &lineRecord

		default:
			created := models.Customer{
				Name:       hints.DisplayName,
				Phone:      phone,
				LineUserID: &lineUserID,
			}
			if created.Name == "" {
				created.Name = phone
			}
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
			unified = &created
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unified, nil
}

// applyHints overlays the profile fields captured during linking; empty
// hints leave the record as is.
func applyHints(c *models.Customer, hints ProfileHints) {
	if hints.DisplayName != "" {
		c.Name = hints.DisplayName
	}
}

// AwardPointsOnCompletion credits points for a completed appointment. The
// appointment row carries an awarded stamp, so a retried completion is a
// no-op rather than a double credit.
func (s *LoyaltyService) AwardPointsOnCompletion(ctx context.Context, customerID, appointmentID uuid.UUID, amount int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		_, err := s.awardPoints(tx, customerID, appointmentID, amount)
		return err
	})
}

// awardPoints runs inside the caller's transaction. Returns the amount
// actually credited; 0 when this appointment was already awarded.
func (s *LoyaltyService) awardPoints(tx *gorm.DB, customerID, appointmentID uuid.UUID, amount int) (int, error) {
	// Claim the award stamp; zero rows means another completion got here
	// first (or points are disabled and amount is 0 — still stamp it).
	res := tx.Model(&models.Appointment{}).
		Where("id = ? AND points_awarded_at IS NULL", appointmentID).
		Update("points_awarded_at", time.Now())
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	if amount <= 0 {
		return 0, nil
	}

	now := time.Now()
	res = tx.Model(&models.Customer{}).Where("id = ?", customerID).
		Updates(map[string]interface{}{
			"points":                    gorm.Expr("points + ?", amount),
			"last_award_amount":         amount,
			"last_award_at":             now,
			"last_award_appointment_id": appointmentID,
			"total_visits":              gorm.Expr("total_visits + ?", 1),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	return amount, nil
}

// EnsureCustomer finds the loyalty record for an appointment's customer,
// preferring the LINE identity, and creates one on first award.
func (s *LoyaltyService) EnsureCustomer(tx *gorm.DB, name, phone string, lineUserID *string) (*models.Customer, error) {
	var customer models.Customer

	if lineUserID != nil {
		err := tx.Where("line_user_id = ?", *lineUserID).First(&customer).Error
		if err == nil {
			return &customer, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	err := tx.Where("phone = ?", phone).First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer = models.Customer{Name: name, Phone: phone, LineUserID: lineUserID}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByLineID resolves a customer by LINE identity.
func (s *LoyaltyService) FindByLineID(ctx context.Context, lineUserID string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.Where("line_user_id = ?", lineUserID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer for line id: %w", ErrNotFound)
		}
		return nil, err
	}
	return &customer, nil
}
