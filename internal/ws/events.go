package ws

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventRuleExecuted EventType = "rule.executed"
	EventRuleUpdated  EventType = "rule.updated"
	EventQuotaAlert   EventType = "quota.alert"
	EventPlanChanged  EventType = "plan.changed"
)

type Event struct {
	TenantID  uuid.UUID   `json:"-"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
