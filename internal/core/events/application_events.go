package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeApplicationSubmitted     = "application.submitted"
	EventTypeApplicationStatusChanged = "application.status_changed"
)

type ApplicationSubmittedEvent struct {
	BaseEvent
	ApplicationID   string `json:"application_id"`
	StudentID       string `json:"student_id"`
	InternshipID    string `json:"internship_id"`
	InternshipTitle string `json:"internship_title"`
	CompanyName     string `json:"company_name"`
}

func NewApplicationSubmittedEvent(applicationID, studentID, internshipID, internshipTitle, companyName string) *ApplicationSubmittedEvent {
	return &ApplicationSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApplicationSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"application_id":   applicationID,
				"student_id":       studentID,
				"internship_id":    internshipID,
				"internship_title": internshipTitle,
				"company_name":     companyName,
			},
		},
		ApplicationID:   applicationID,
		StudentID:       studentID,
		InternshipID:    internshipID,
		InternshipTitle: internshipTitle,
		CompanyName:     companyName,
	}
}

type ApplicationStatusChangedEvent struct {
	BaseEvent
	ApplicationID string `json:"application_id"`
	StudentID     string `json:"student_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
}

func NewApplicationStatusChangedEvent(applicationID, studentID, oldStatus, newStatus string) *ApplicationStatusChangedEvent {
	return &ApplicationStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApplicationStatusChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"application_id": applicationID,
				"student_id":     studentID,
				"old_status":     oldStatus,
				"new_status":     newStatus,
			},
		},
		ApplicationID: applicationID,
		StudentID:     studentID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
	}
}
