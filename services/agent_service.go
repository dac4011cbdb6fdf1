package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"helpdesk/models"
)

var (
	ErrAgentNotFound      = errors.New("agent not found")
	ErrAgentUserRequired  = errors.New("agent requires a linked user")
	ErrInvalidAgentStatus = errors.New("invalid agent status")
)

type AgentFilter struct {
	DepartmentID uint
	Role         string
	Status       string
}

type AgentService struct {
	db *gorm.DB
}

func NewAgentService(db *gorm.DB) *AgentService {
	return &AgentService{db: db}
}

func (s *AgentService) ListAgents(filter AgentFilter) ([]models.Agent, error) {
	var agents []models.Agent
	query := s.db.Preload("User").Order("id ASC")
	if filter.DepartmentID != 0 {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if err := query.Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

func (s *AgentService) GetAgent(id uint) (*models.Agent, error) {
	var agent models.Agent
	if err := s.db.Preload("User").First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

func (s *AgentService) GetAgentByUserID(userID uint) (*models.Agent, error) {
	var agent models.Agent
	err := s.db.Preload("User").Where("user_id = ?", userID).First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

func (s *AgentService) CreateAgent(agent *models.Agent) error {
	if agent.UserID == 0 {
		return ErrAgentUserRequired
	}
	if agent.Role == "" {
		agent.Role = models.RoleAgent
	}
	if agent.MaxChats <= 0 {
		agent.MaxChats = 5
	}
	if agent.Status == "" {
		agent.Status = models.AgentOffline
	}
	agent.LastSeen = time.Now()
	return s.db.Create(agent).Error
}

func (s *AgentService) UpdateAgent(agent *models.Agent) error {
	return s.db.Save(agent).Error
}

func (s *AgentService) DeleteAgent(id uint) error {
	result := s.db.Delete(&models.Agent{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAgentNotFound
	}
	return nil
}

// SetStatus updates the volatile online status of an agent, keyed by the
// linked user id. Any non-offline status counts as online.
func (s *AgentService) SetStatus(userID uint, status string) error {
	switch status {
	case models.AgentActive, models.AgentAway, models.AgentOffline:
	default:
		return ErrInvalidAgentStatus
	}

	now := time.Now()
	result := s.db.Model(&models.Agent{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":     status,
			"is_online":  status != models.AgentOffline,
			"last_seen":  now,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAgentNotFound
	}
	return nil
}

// OnlineAgents returns agents that are currently online (active or away),
// optionally filtered by department, ordered by id ascending.
func (s *AgentService) OnlineAgents(departmentID uint) ([]models.Agent, error) {
	var agents []models.Agent
	query := s.db.Preload("User").Where("is_online = ?", true).Order("id ASC")
	if departmentID != 0 {
		query = query.Where("department_id = ?", departmentID)
	}
	if err := query.Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

// OpenCount is the number of open conversations currently assigned to the
// agent. Computed by aggregation, never cached.
func (s *AgentService) OpenCount(agentID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Conversation{}).
		Where("agent_id = ? AND status = ?", agentID, models.ConversationOpen).
		Count(&count).Error
	return count, err
}
