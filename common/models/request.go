package models

import (
	"fmt"
	"time"
)

// RequestStatus is the lifecycle status of a provisioning request
type RequestStatus string

const (
	RequestCreated   RequestStatus = "created"
	RequestProcessed RequestStatus = "processed"
	RequestCompleted RequestStatus = "completed"
	RequestCanceled  RequestStatus = "canceled"
	RequestDeleted   RequestStatus = "deleted"
)

// ParseRequestStatus validates a wire value against the closed status set
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(s) {
	case RequestCreated, RequestProcessed, RequestCompleted, RequestCanceled, RequestDeleted:
		return RequestStatus(s), nil
	}
	return "", fmt.Errorf("unknown request status: %q", s)
}

// LineItemStatus is the processing sub-status of a request line item
type LineItemStatus string

const (
	LineItemNew       LineItemStatus = "new"
	LineItemProcessed LineItemStatus = "processed"
	LineItemCompleted LineItemStatus = "completed"
	LineItemFailed    LineItemStatus = "failed"
	LineItemCanceled  LineItemStatus = "canceled"
)

// ParseLineItemStatus validates a wire value against the closed status set
func ParseLineItemStatus(s string) (LineItemStatus, error) {
	switch LineItemStatus(s) {
	case LineItemNew, LineItemProcessed, LineItemCompleted, LineItemFailed, LineItemCanceled:
		return LineItemStatus(s), nil
	}
	return "", fmt.Errorf("unknown line item status: %q", s)
}

// Request is a user's provisioning request (cart) targeting one machine
type Request struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	ModeratorID *int64        `json:"moderator_id"`
	Status      RequestStatus `json:"status"`
	SSHAddress  *string       `json:"ssh_address"`
	SSHPassword *string       `json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	ProcessedAt *time.Time    `json:"processed_at"`
	CompletedAt *time.Time    `json:"completed_at"`
}

// LineItem is a (request, software) association with its own sub-status
type LineItem struct {
	RequestID  int64          `json:"request_id"`
	SoftwareID int64          `json:"software_id"`
	ToInstall  bool           `json:"to_install"`
	Status     LineItemStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// LineItemDetail joins a line item with its software row
type LineItemDetail struct {
	LineItem
	Software Software `json:"software"`
}

// RequestDetail joins a request with its owner's username and active line items
type RequestDetail struct {
	Request
	Username string           `json:"username"`
	Items    []LineItemDetail `json:"softwares"`
}

// RequestFilter narrows request listings. A nil Status means
// "everything except deleted".
type RequestFilter struct {
	Status        *RequestStatus
	UserID        *int64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
