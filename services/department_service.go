package services

import (
	"errors"

	"gorm.io/gorm"

	"helpdesk/models"
)

var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentName     = errors.New("department name required")
)

type DepartmentService struct {
	db *gorm.DB
}

func NewDepartmentService(db *gorm.DB) *DepartmentService {
	return &DepartmentService{db: db}
}

func (s *DepartmentService) CreateDepartment(dept *models.Department) error {
	if dept.Name == "" {
		return ErrDepartmentName
	}
	return s.db.Create(dept).Error
}

func (s *DepartmentService) GetDepartment(id uint) (*models.Department, error) {
	var dept models.Department
	if err := s.db.First(&dept, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (s *DepartmentService) ListDepartments() ([]models.Department, error) {
	var departments []models.Department
	err := s.db.Order("name ASC").Find(&departments).Error
	return departments, err
}

func (s *DepartmentService) UpdateDepartment(dept *models.Department) error {
	if dept.Name == "" {
		return ErrDepartmentName
	}
	result := s.db.Model(&models.Department{}).Where("id = ?", dept.ID).Updates(map[string]interface{}{
		"name":  dept.Name,
		"color": dept.Color,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

// DeleteDepartment removes a department and detaches its agents so they
// fall back to the any-department pool.
func (s *DepartmentService) DeleteDepartment(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var dept models.Department
		if err := tx.First(&dept, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDepartmentNotFound
			}
			return err
		}
		if err := tx.Model(&models.Agent{}).
			Where("department_id = ?", id).
			Update("department_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&dept).Error
	})
}
