// controllers/reward.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/config"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/models"
	"github.com/yodyaa/YODYA-APPOINTMENT-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateRewardInput struct {
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	PointsRequired int     `json:"pointsRequired" binding:"required,gt=0"`
	DiscountType   string  `json:"discountType" binding:"required,oneof=percentage fixed"`
	DiscountValue  float64 `json:"discountValue" binding:"required,gt=0"`
}

type UpdateRewardInput struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	PointsRequired *int     `json:"pointsRequired" binding:"omitempty,gt=0"`
	DiscountType   *string  `json:"discountType" binding:"omitempty,oneof=percentage fixed"`
	DiscountValue  *float64 `json:"discountValue" binding:"omitempty,gt=0"`
	IsActive       *bool    `json:"isActive"`
}

// CreateReward adds a catalog entry
func CreateReward(c *gin.Context) {
	var input CreateRewardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reward := models.Reward{
		Name:           input.Name,
		Description:    input.Description,
		PointsRequired: input.PointsRequired,
		DiscountType:   input.DiscountType,
		DiscountValue:  input.DiscountValue,
		IsActive:       true,
	}
	if err := config.DB.Create(&reward).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create reward")
		return
	}

	c.JSON(http.StatusCreated, reward)
}

// GetRewards lists the full catalog for admins
func GetRewards(c *gin.Context) {
	var rewards []models.Reward
	if err := config.DB.Order("points_required ASC").Find(&rewards).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve rewards")
		return
	}

	c.JSON(http.StatusOK, rewards)
}

// UpdateReward updates a catalog entry
func UpdateReward(c *gin.Context) {
	rewardUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reward ID format")
		return
	}

	var input UpdateRewardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var reward models.Reward
	if err := config.DB.Where("id = ?", rewardUUID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Reward not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		reward.Name = *input.Name
	}
	if input.Description != nil {
		reward.Description = *input.Description
	}
	if input.PointsRequired != nil {
		reward.PointsRequired = *input.PointsRequired
	}
	if input.DiscountType != nil {
		reward.DiscountType = *input.DiscountType
	}
	if input.DiscountValue != nil {
		reward.DiscountValue = *input.DiscountValue
	}
	if input.IsActive != nil {
		reward.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&reward).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update reward")
		return
	}

	c.JSON(http.StatusOK, reward)
}

// DeleteReward soft deletes a catalog entry; issued coupons keep their
// denormalized copy.
func DeleteReward(c *gin.Context) {
	rewardUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reward ID format")
		return
	}

	result := config.DB.Where("id = ?", rewardUUID).Delete(&models.Reward{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete reward")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Reward not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reward deleted successfully"})
}
