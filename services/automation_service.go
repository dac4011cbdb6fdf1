package services

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"helpdesk/models"
)

var (
	ErrAutomationNotFound = errors.New("automation not found")
	ErrAutomationName     = errors.New("automation name required")
	ErrInvalidTrigger     = errors.New("invalid trigger type")
	ErrInvalidAction      = errors.New("invalid action type")
)

var automationTriggers = map[string]bool{
	models.TriggerNewConversation: true,
	models.TriggerMessageReceived: true,
	models.TriggerTicketCreated:   true,
}

var automationActions = map[string]bool{
	models.ActionAssignAgent:  true,
	models.ActionAssignDept:   true,
	models.ActionSendMessage:  true,
	models.ActionChangeStatus: true,
	models.ActionAddTag:       true,
}

// Condition is one clause of an automation's condition list. All clauses
// must pass for the automation to fire (AND semantics); an empty list
// always passes.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// AutomationService evaluates rule-based automations against domain
// events. Trigger* methods are called synchronously from the event bus;
// they log and swallow all evaluation errors so a broken rule can never
// fail the operation that fired it.
type AutomationService struct {
	db *gorm.DB
}

func NewAutomationService(db *gorm.DB) *AutomationService {
	return &AutomationService{db: db}
}

func (s *AutomationService) CreateAutomation(a *models.Automation) error {
	if a.Name == "" {
		return ErrAutomationName
	}
	if !automationTriggers[a.TriggerType] {
		return ErrInvalidTrigger
	}
	if !automationActions[a.ActionType] {
		return ErrInvalidAction
	}
	if a.Conditions == "" {
		a.Conditions = "[]"
	}
	if a.ActionData == "" {
		a.ActionData = "{}"
	}
	return s.db.Create(a).Error
}

func (s *AutomationService) GetAutomation(id uint) (*models.Automation, error) {
	var a models.Automation
	if err := s.db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAutomationNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *AutomationService) ListAutomations() ([]models.Automation, error) {
	var automations []models.Automation
	err := s.db.Order("id ASC").Find(&automations).Error
	return automations, err
}

func (s *AutomationService) UpdateAutomation(a *models.Automation) error {
	if a.Name == "" {
		return ErrAutomationName
	}
	if !automationTriggers[a.TriggerType] {
		return ErrInvalidTrigger
	}
	if !automationActions[a.ActionType] {
		return ErrInvalidAction
	}
	result := s.db.Model(&models.Automation{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"name":         a.Name,
		"trigger_type": a.TriggerType,
		"conditions":   a.Conditions,
		"action_type":  a.ActionType,
		"action_data":  a.ActionData,
		"is_active":    a.IsActive,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAutomationNotFound
	}
	return nil
}

func (s *AutomationService) DeleteAutomation(id uint) error {
	result := s.db.Delete(&models.Automation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAutomationNotFound
	}
	return nil
}

// eventContext carries the entities an automation run can read fields
// from and act on. Conversation-shaped triggers carry Conversation (and
// Message for message_received); ticket triggers carry Ticket.
type eventContext struct {
	Conversation *models.Conversation
	Message      *models.Message
	Ticket       *models.Ticket
}

// TriggerNewConversation runs active new_conversation automations
// against the conversation, in id order.
func (s *AutomationService) TriggerNewConversation(conversationID uint) {
	var conv models.Conversation
	if err := s.db.First(&conv, conversationID).Error; err != nil {
		log.Printf("automation: conversation %d not found: %v", conversationID, err)
		return
	}
	s.run(models.TriggerNewConversation, &eventContext{Conversation: &conv})
}

// TriggerNewMessage runs active message_received automations. System
// messages never trigger automations, otherwise a send_message action
// would fire its own trigger.
func (s *AutomationService) TriggerNewMessage(messageID, conversationID uint) {
	var msg models.Message
	if err := s.db.First(&msg, messageID).Error; err != nil {
		log.Printf("automation: message %d not found: %v", messageID, err)
		return
	}
	if msg.IsSystem() {
		return
	}
	var conv models.Conversation
	if err := s.db.First(&conv, conversationID).Error; err != nil {
		log.Printf("automation: conversation %d not found: %v", conversationID, err)
		return
	}
	s.run(models.TriggerMessageReceived, &eventContext{Conversation: &conv, Message: &msg})
}

// TriggerNewTicket runs active ticket_created automations.
func (s *AutomationService) TriggerNewTicket(ticketID uint) {
	var ticket models.Ticket
	if err := s.db.First(&ticket, ticketID).Error; err != nil {
		log.Printf("automation: ticket %d not found: %v", ticketID, err)
		return
	}
	s.run(models.TriggerTicketCreated, &eventContext{Ticket: &ticket})
}

// run evaluates every active automation for the trigger in id order.
// The context entity is reloaded before each automation so a later rule
// observes the writes of an earlier one (assign_dept then a dept-scoped
// rule, for instance).
func (s *AutomationService) run(trigger string, ec *eventContext) {
	var automations []models.Automation
	err := s.db.Where("trigger_type = ? AND is_active = ?", trigger, true).
		Order("id ASC").
		Find(&automations).Error
	if err != nil {
		log.Printf("automation: loading rules for %s failed: %v", trigger, err)
		return
	}

	for i := range automations {
		if err := s.reload(ec); err != nil {
			log.Printf("automation %d: context reload failed: %v", automations[i].ID, err)
			return
		}
		if !s.matches(&automations[i], ec) {
			continue
		}
		s.execute(&automations[i], ec)
	}
}

func (s *AutomationService) reload(ec *eventContext) error {
	if ec.Conversation != nil {
		if err := s.db.First(ec.Conversation, ec.Conversation.ID).Error; err != nil {
			return err
		}
	}
	if ec.Ticket != nil {
		if err := s.db.First(ec.Ticket, ec.Ticket.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *AutomationService) matches(a *models.Automation, ec *eventContext) bool {
	var conditions []Condition
	if a.Conditions != "" {
		if err := json.Unmarshal([]byte(a.Conditions), &conditions); err != nil {
			log.Printf("automation %d: malformed conditions: %v", a.ID, err)
			return false
		}
	}
	for _, c := range conditions {
		if !evalCondition(c, ec) {
			return false
		}
	}
	return true
}

// evalCondition compares a context field against the condition value.
// Unknown operators pass rather than silently disabling the rule.
func evalCondition(c Condition, ec *eventContext) bool {
	actual := ec.field(c.Field)
	switch c.Operator {
	case "equals":
		return actual == c.Value
	case "not_equals":
		return actual != c.Value
	case "contains":
		return strings.Contains(strings.ToLower(actual), strings.ToLower(c.Value))
	case "not_contains":
		return !strings.Contains(strings.ToLower(actual), strings.ToLower(c.Value))
	default:
		return true
	}
}

// field resolves a condition field name against the context, probing the
// conversation first, then the message, then the ticket. An unresolvable
// field reads as the empty string.
func (ec *eventContext) field(name string) string {
	if ec.Conversation != nil {
		if v, ok := conversationField(ec.Conversation, name); ok {
			return v
		}
	}
	if ec.Message != nil {
		if v, ok := messageField(ec.Message, name); ok {
			return v
		}
	}
	if ec.Ticket != nil {
		if v, ok := ticketField(ec.Ticket, name); ok {
			return v
		}
	}
	return ""
}

func conversationField(c *models.Conversation, name string) (string, bool) {
	switch name {
	case "status":
		return c.Status, true
	case "subject":
		return c.Subject, true
	case "source":
		return c.Source, true
	case "user_email":
		return c.UserEmail, true
	case "user_name":
		return c.UserName, true
	case "current_page":
		return c.CurrentPage, true
	case "tags":
		return c.Tags, true
	case "department_id":
		return optionalID(c.DepartmentID)
	case "agent_id":
		return optionalID(c.AgentID)
	}
	return "", false
}

func messageField(m *models.Message, name string) (string, bool) {
	switch name {
	case "content":
		return m.Content, true
	case "message_type":
		return m.MessageType, true
	}
	return "", false
}

func ticketField(t *models.Ticket, name string) (string, bool) {
	switch name {
	case "status":
		return t.Status, true
	case "subject":
		return t.Subject, true
	case "priority":
		return t.Priority, true
	case "user_email":
		return t.UserEmail, true
	case "tags":
		return t.Tags, true
	case "department_id":
		return optionalID(t.DepartmentID)
	case "agent_id":
		return optionalID(t.AssignedAgentID)
	}
	return "", false
}

// optionalID renders a nullable foreign key. An unset key reads as not
// found so conditions fall through to the next entity in the probe order.
func optionalID(id *uint) (string, bool) {
	if id == nil {
		return "", false
	}
	return strconv.FormatUint(uint64(*id), 10), true
}

// Action payload shapes. Each is decoded fresh per firing; malformed or
// incomplete data skips the action without failing the run.
type assignAgentAction struct {
	AgentID uint `json:"agent_id"`
}

type assignDeptAction struct {
	DepartmentID uint `json:"department_id"`
}

type sendMessageAction struct {
	Message string `json:"message"`
}

type changeStatusAction struct {
	Status string `json:"status"`
}

type addTagAction struct {
	Tag string `json:"tag"`
}

// execute applies the automation's action to the context. Ticket-shaped
// contexts take precedence over conversation-shaped ones when both are
// present.
func (s *AutomationService) execute(a *models.Automation, ec *eventContext) {
	data := []byte(a.ActionData)

	switch a.ActionType {
	case models.ActionAssignAgent:
		var action assignAgentAction
		if json.Unmarshal(data, &action) != nil || action.AgentID == 0 {
			return
		}
		if ec.Ticket != nil {
			s.touch(&models.Ticket{}, ec.Ticket.ID, map[string]interface{}{"assigned_agent_id": action.AgentID}, a.ID)
		} else if ec.Conversation != nil {
			s.touch(&models.Conversation{}, ec.Conversation.ID, map[string]interface{}{"agent_id": action.AgentID}, a.ID)
		}

	case models.ActionAssignDept:
		var action assignDeptAction
		if json.Unmarshal(data, &action) != nil || action.DepartmentID == 0 {
			return
		}
		if ec.Ticket != nil {
			s.touch(&models.Ticket{}, ec.Ticket.ID, map[string]interface{}{"department_id": action.DepartmentID}, a.ID)
		} else if ec.Conversation != nil {
			s.touch(&models.Conversation{}, ec.Conversation.ID, map[string]interface{}{"department_id": action.DepartmentID}, a.ID)
		}

	case models.ActionSendMessage:
		var action sendMessageAction
		if json.Unmarshal(data, &action) != nil || action.Message == "" {
			return
		}
		if ec.Conversation == nil {
			return
		}
		// Inserted directly, not through MessageService: system messages
		// must not publish a new-message event and re-enter the engine.
		msg := models.Message{
			ConversationID: ec.Conversation.ID,
			Content:        action.Message,
			MessageType:    models.MessageSystem,
		}
		if err := s.db.Create(&msg).Error; err != nil {
			log.Printf("automation %d: send_message failed: %v", a.ID, err)
		}

	case models.ActionChangeStatus:
		var action changeStatusAction
		if json.Unmarshal(data, &action) != nil || action.Status == "" {
			return
		}
		if ec.Ticket != nil {
			s.touch(&models.Ticket{}, ec.Ticket.ID, map[string]interface{}{"status": action.Status}, a.ID)
		} else if ec.Conversation != nil {
			s.touch(&models.Conversation{}, ec.Conversation.ID, map[string]interface{}{"status": action.Status}, a.ID)
		}

	case models.ActionAddTag:
		var action addTagAction
		if json.Unmarshal(data, &action) != nil || action.Tag == "" {
			return
		}
		if ec.Ticket != nil {
			s.touch(&models.Ticket{}, ec.Ticket.ID, map[string]interface{}{"tags": appendTag(ec.Ticket.Tags, action.Tag)}, a.ID)
		} else if ec.Conversation != nil {
			s.touch(&models.Conversation{}, ec.Conversation.ID, map[string]interface{}{"tags": appendTag(ec.Conversation.Tags, action.Tag)}, a.ID)
		}
	}
}

func (s *AutomationService) touch(model interface{}, id uint, updates map[string]interface{}, automationID uint) {
	updates["updated_at"] = time.Now()
	if err := s.db.Model(model).Where("id = ?", id).Updates(updates).Error; err != nil {
		log.Printf("automation %d: update failed: %v", automationID, err)
	}
}

// appendTag adds a tag to a comma-separated list, skipping duplicates.
func appendTag(tags, tag string) string {
	if tags == "" {
		return tag
	}
	for _, existing := range strings.Split(tags, ",") {
		if strings.TrimSpace(existing) == tag {
			return tags
		}
	}
	return tags + "," + tag
}
