package leads

import (
	"strings"
	"time"
)

// Priority ranks how urgently a lead needs attention.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Platform is the channel a lead came in on.
type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformWhatsApp  Platform = "WhatsApp"
	PlatformCall      Platform = "Call"
	PlatformGmail     Platform = "Gmail"
)

// LeadType separates consumers from businesses and partners.
type LeadType string

const (
	LeadTypeB2C          LeadType = "B2C"
	LeadTypeB2B          LeadType = "B2B"
	LeadTypeCollaborator LeadType = "Collaborator"
)

const (
	StatusNew    = "New"
	StatusClosed = "Closed"
)

var subTypes = map[LeadType][]string{
	LeadTypeB2C:          nil,
	LeadTypeB2B:          {"Restaurant", "Cafe", "Bar", "Hotel", "Airline", "White Labelling", "Retail"},
	LeadTypeCollaborator: {"Promoter", "Influencer", "Bar Consultant"},
}

// SubTypes returns the sub-types allowed for t.
func SubTypes(t LeadType) []string {
	return append([]string(nil), subTypes[t]...)
}

// Lead is a prospective or existing customer tracked through follow-ups.
// JSON names match the sheet mirror columns.
type Lead struct {
	ID           string     `json:"id"`
	UserID       string     `json:"-"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	Status       string     `json:"status"`
	Priority     Priority   `json:"priority"`
	LeadType     LeadType   `json:"leadType"`
	LeadSubType  string     `json:"leadSubType"`
	TeamMember   string     `json:"teamMember"`
	Platform     Platform   `json:"platform"`
	OrderValue   string     `json:"orderValue"`
	SaleDate     string     `json:"saleDate"`
	HoneyTypes   []string   `json:"honeyTypes"`
	HoneyType    string     `json:"honeyType,omitempty"`
	Notes        string     `json:"notes"`
	NextFollowUp *time.Time `json:"nextFollowUp,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsClosed reports whether the lead has reached the terminal status.
func (l *Lead) IsClosed() bool {
	return l.Status == StatusClosed
}

// Clone returns a deep copy.
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	out := *l
	out.HoneyTypes = append([]string(nil), l.HoneyTypes...)
	if l.NextFollowUp != nil {
		t := *l.NextFollowUp
		out.NextFollowUp = &t
	}
	return &out
}

// FormState is the raw lead form as submitted by a client.
type FormState struct {
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	Status      string   `json:"status"`
	Priority    Priority `json:"priority"`
	LeadType    LeadType `json:"leadType"`
	LeadSubType string   `json:"leadSubType"`
	TeamMember  string   `json:"teamMember"`
	Platform    Platform `json:"platform"`
	OrderValue  string   `json:"orderValue"`
	SaleDate    string   `json:"saleDate"`
	HoneyTypes  []string `json:"honeyTypes"`
	HoneyType   string   `json:"honeyType"`
	Notes       string   `json:"notes"`

	// Follow-up: date (yyyy-MM-dd) plus a 12-hour clock.
	Date   string `json:"date"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	AMPM   string `json:"ampm"`
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Name         *string    `json:"name"`
	Phone        *string    `json:"phone"`
	Email        *string    `json:"email"`
	Status       *string    `json:"status"`
	Priority     *Priority  `json:"priority"`
	LeadType     *LeadType  `json:"leadType"`
	LeadSubType  *string    `json:"leadSubType"`
	TeamMember   *string    `json:"teamMember"`
	Platform     *Platform  `json:"platform"`
	OrderValue   *string    `json:"orderValue"`
	SaleDate     *string    `json:"saleDate"`
	HoneyTypes   []string   `json:"honeyTypes"`
	Notes        *string    `json:"notes"`
	NextFollowUp *time.Time `json:"nextFollowUp"`
}

// Apply copies the set fields onto lead.
func (p *Patch) Apply(lead *Lead) {
	if p == nil || lead == nil {
		return
	}
	setString(&lead.Name, p.Name)
	setString(&lead.Phone, p.Phone)
	setString(&lead.Email, p.Email)
	setString(&lead.Status, p.Status)
	setString(&lead.LeadSubType, p.LeadSubType)
	setString(&lead.TeamMember, p.TeamMember)
	setString(&lead.OrderValue, p.OrderValue)
	setString(&lead.SaleDate, p.SaleDate)
	setString(&lead.Notes, p.Notes)
	if p.Priority != nil {
		lead.Priority = *p.Priority
	}
	if p.LeadType != nil {
		lead.LeadType = *p.LeadType
	}
	if p.Platform != nil {
		lead.Platform = *p.Platform
	}
	if p.HoneyTypes != nil {
		lead.HoneyTypes = NormalizeProducts(p.HoneyTypes)
	}
	if p.NextFollowUp != nil {
		t := *p.NextFollowUp
		lead.NextFollowUp = &t
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// ListFilter narrows a lead listing.
type ListFilter struct {
	Query    string
	Priority string
}

// Validate checks the required fields and enumerations of a lead before any write.
func Validate(lead *Lead, requirePhone bool) error {
	if strings.TrimSpace(lead.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrInvalidName}
	}
	if requirePhone && strings.TrimSpace(lead.Phone) == "" {
		return &ValidationError{Field: "phone", Err: ErrMissingPhone}
	}
	switch lead.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return &ValidationError{Field: "priority", Err: ErrInvalidPriority}
	}
	switch lead.Platform {
	case PlatformInstagram, PlatformWhatsApp, PlatformCall, PlatformGmail:
	default:
		return &ValidationError{Field: "platform", Err: ErrInvalidPlatform}
	}
	allowed, ok := subTypes[lead.LeadType]
	if !ok {
		return &ValidationError{Field: "leadType", Err: ErrInvalidLeadType}
	}
	if lead.LeadSubType != "" && !contains(allowed, lead.LeadSubType) {
		return &ValidationError{Field: "leadSubType", Err: ErrInvalidSubType}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
