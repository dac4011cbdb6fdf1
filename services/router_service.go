package services

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"helpdesk/models"
)

// Assignment policies.
type Policy string

const (
	PolicyLeastBusy  Policy = "least_busy"
	PolicyRoundRobin Policy = "round_robin"
)

var ErrUnknownPolicy = errors.New("unknown assignment policy")

// RoutingState stores the per-department round-robin cursor. The redis
// client implements it with a 24h TTL per key.
type RoutingState interface {
	LastAgent(ctx context.Context, departmentID uint) (uint, error)
	SetLastAgent(ctx context.Context, departmentID, agentID uint) error
}

// RouterService selects an agent for an unassigned conversation. A nil
// agent with a nil error means no agent is eligible; the caller decides
// the fallback (leave unassigned, broadcast notify).
type RouterService struct {
	db    *gorm.DB
	state RoutingState
}

func NewRouterService(db *gorm.DB, state RoutingState) *RouterService {
	return &RouterService{db: db, state: state}
}

type candidate struct {
	ID        uint
	OpenCount int
}

// eligible returns online agents under their concurrency cap, ordered by
// id ascending. departmentID 0 means any department. The open-conversation
// count is aggregated at selection time; the selection and the subsequent
// assignment write are not transactional, so the cap is advisory.
func (s *RouterService) eligible(departmentID uint) ([]candidate, error) {
	query := s.db.Table("agents").
		Select("agents.id AS id, COALESCE(oc.open_count, 0) AS open_count").
		Joins(`LEFT JOIN (
			SELECT agent_id, COUNT(*) AS open_count
			FROM conversations
			WHERE status = ?
			GROUP BY agent_id
		) oc ON oc.agent_id = agents.id`, models.ConversationOpen).
		Where("agents.is_online = ?", true).
		Where("COALESCE(oc.open_count, 0) < agents.max_chats")
	if departmentID != 0 {
		query = query.Where("agents.department_id = ?", departmentID)
	}

	var rows []candidate
	if err := query.Order("agents.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *RouterService) SelectAgent(ctx context.Context, departmentID uint, policy Policy) (*models.Agent, error) {
	switch policy {
	case PolicyLeastBusy:
		return s.leastBusy(departmentID)
	case PolicyRoundRobin:
		return s.roundRobin(ctx, departmentID)
	default:
		return nil, ErrUnknownPolicy
	}
}

// leastBusy picks the eligible agent with the fewest open conversations,
// lowest id among ties.
func (s *RouterService) leastBusy(departmentID uint) (*models.Agent, error) {
	rows, err := s.eligible(departmentID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	best := rows[0]
	for _, row := range rows[1:] {
		if row.OpenCount < best.OpenCount {
			best = row
		}
	}
	return s.loadAgent(best.ID)
}

// roundRobin picks the first eligible agent with an id strictly greater
// than the department cursor, wrapping to the first eligible agent when
// none follows (including when the cursor agent went offline or was the
// last eligible one — the two cases are deliberately not distinguished).
func (s *RouterService) roundRobin(ctx context.Context, departmentID uint) (*models.Agent, error) {
	rows, err := s.eligible(departmentID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	last, err := s.state.LastAgent(ctx, departmentID)
	if err != nil {
		// A lost cursor only degrades fairness, never correctness.
		log.Printf("round-robin cursor read failed for department %d: %v", departmentID, err)
		last = 0
	}

	next := rows[0]
	for _, row := range rows {
		if row.ID > last {
			next = row
			break
		}
	}

	if err := s.state.SetLastAgent(ctx, departmentID, next.ID); err != nil {
		log.Printf("round-robin cursor write failed for department %d: %v", departmentID, err)
	}
	return s.loadAgent(next.ID)
}

func (s *RouterService) loadAgent(id uint) (*models.Agent, error) {
	var agent models.Agent
	if err := s.db.Preload("User").First(&agent, id).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}
