// controllers/employee.go
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

type CreateEmployeeInput struct {
	Name       string  `json:"name" binding:"required"`
	Phone      string  `json:"phone"`
	LineUserID *string `json:"lineUserId"`
	Skills     string  `json:"skills"`
}

type UpdateEmployeeInput struct {
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	LineUserID *string `json:"lineUserId"`
	Skills     *string `json:"skills"`
	IsActive   *bool   `json:"isActive"`
}

// GetEmployees lists the provider directory
func GetEmployees(c *gin.Context) {
	q := config.DB.Order("name ASC")
	if c.Query("all") != "true" {
		q = q.Where("is_active = true")
	}

	var employees []models.Employee
	if err := q.Find(&employees).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve employees")
		return
	}

	c.JSON(http.StatusOK, employees)
}

// AddEmployee creates a provider record
func AddEmployee(c *gin.Context) {
	var input CreateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	employee := models.Employee{
		Name:       input.Name,
		Phone:      input.Phone,
		LineUserID: input.LineUserID,
		Skills:     input.Skills,
		IsActive:   true,
	}
	if err := config.DB.Create(&employee).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create employee")
		return
	}

	c.JSON(http.StatusCreated, employee)
}

// UpdateEmployee updates a provider record
func UpdateEmployee(c *gin.Context) {
	employeeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	var input UpdateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var employee models.Employee
	if err := config.DB.Where("id = ?", employeeUUID).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		employee.Name = *input.Name
	}
	if input.Phone != nil {
		employee.Phone = *input.Phone
	}
	if input.LineUserID != nil {
		employee.LineUserID = input.LineUserID
	}
	if input.Skills != nil {
		employee.Skills = *input.Skills
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&employee).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update employee")
		return
	}

	c.JSON(http.StatusOK, employee)
}

// DeleteEmployee soft deletes a provider record
func DeleteEmployee(c *gin.Context) {
	employeeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	result := config.DB.Where("id = ?", employeeUUID).Delete(&models.Employee{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete employee")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}
