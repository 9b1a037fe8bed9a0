package model

import "time"

type BlockedTime struct {
	ID                string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID          string          `json:"tenantId" bson:"tenant_id" validate:"required,scope_id"`
	UserID            string          `json:"userId" bson:"user_id" validate:"required,scope_id"`
	ProviderID        string          `json:"providerId,omitempty" bson:"provider_id,omitempty" validate:"omitempty,scope_id"`
	ResourceID        string          `json:"resourceId,omitempty" bson:"resource_id,omitempty" validate:"omitempty,scope_id"`
	StartTime         time.Time       `json:"startTime" bson:"start_time" validate:"required"`
	EndTime           time.Time       `json:"endTime" bson:"end_time" validate:"required,gtfield=StartTime"`
	Reason            string          `json:"reason" bson:"reason" validate:"required,min=1,max=500"`
	RecurrenceRule    *RecurrenceRule `json:"recurrenceRule,omitempty" bson:"recurrence_rule,omitempty" validate:"omitempty"`
	RecurrenceGroupID string          `json:"recurrenceGroupId,omitempty" bson:"recurrence_group_id,omitempty" validate:"omitempty,uuid4"`
	CreatedAt         time.Time       `json:"createdAt" bson:"created_at" validate:"omitempty"`
}

func (b *BlockedTime) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// AppliesTo reports whether the block makes time unavailable for scope.
func (b *BlockedTime) AppliesTo(scope Scope) bool {
	if b.TenantID != scope.TenantID {
		return false
	}
	if scope.HasProvider() && b.ProviderID == scope.ProviderID {
		return true
	}
	if scope.HasResource() && b.ResourceID == scope.ResourceID {
		return true
	}
	return !scope.HasProvider() && b.ProviderID == "" && b.ResourceID == "" && b.UserID == scope.UserID
}
