// controllers/loyalty.go
package controllers

import (
	"net/http"

	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/config"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/services"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LinkAccountInput struct {
	Phone       string `json:"phone" binding:"required"`
	DisplayName string `json:"displayName"`
}

// RedeemReward exchanges points for a coupon.
func RedeemReward(c *gin.Context) {
	lineUserID := c.GetString("lineUserId")

	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reward ID format")
		return
	}

	customer, err := loyaltySvc.FindByLineID(c.Request.Context(), lineUserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	couponID, err := loyaltySvc.RedeemReward(c.Request.Context(), customer.ID, rewardID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"couponId": couponID})
}

// MyProfile returns the customer's loyalty record.
func MyProfile(c *gin.Context) {
	lineUserID := c.GetString("lineUserId")

	customer, err := loyaltySvc.FindByLineID(c.Request.Context(), lineUserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// MyCoupons lists the customer's coupons, unused first.
func MyCoupons(c *gin.Context) {
	lineUserID := c.GetString("lineUserId")

	customer, err := loyaltySvc.FindByLineID(c.Request.Context(), lineUserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var coupons []models.Coupon
	if err := config.DB.Where("customer_id = ?", customer.ID).
		Order("used ASC, redeemed_at DESC").
		Find(&coupons).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve coupons")
		return
	}

	c.JSON(http.StatusOK, coupons)
}

// LinkAccount merges the customer's phone-keyed point balance into their
// LINE identity. Safe to call repeatedly.
func LinkAccount(c *gin.Context) {
	lineUserID := c.GetString("lineUserId")

	var input LinkAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	customer, err := loyaltySvc.MergePointsOnLink(c.Request.Context(), input.Phone, lineUserID,
		services.ProfileHints{DisplayName: input.DisplayName})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// ListRewards shows the active catalog to customers.
func ListRewards(c *gin.Context) {
	var rewards []models.Reward
	if err := config.DB.Where("is_active = true").Order("points_required ASC").
		Find(&rewards).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve rewards")
		return
	}

	c.JSON(http.StatusOK, rewards)
}
