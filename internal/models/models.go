package models

import (
	"strings"
	"time"
)

// ActionType represents the kind of change an activity entry records
type ActionType string

const (
	ActionCreate     ActionType = "CREATE"
	ActionUpdate     ActionType = "UPDATE"
	ActionDelete     ActionType = "DELETE"
	ActionFavorite   ActionType = "FAVORITE"
	ActionUnfavorite ActionType = "UNFAVORITE"
)

// IsValid reports whether a is one of the known action types
func (a ActionType) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionFavorite, ActionUnfavorite:
		return true
	}
	return false
}

// SortKey selects the ordering of the contact list
type SortKey string

const (
	SortDefault  SortKey = "default"
	SortNameAsc  SortKey = "name-asc"
	SortNameDesc SortKey = "name-desc"
	SortCompany  SortKey = "company"
)

// SortKeys lists the sort keys in cycling order
var SortKeys = []SortKey{SortDefault, SortNameAsc, SortNameDesc, SortCompany}

// Next returns the sort key after s in cycling order
func (s SortKey) Next() SortKey {
	for i, k := range SortKeys {
		if k == s {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortDefault
}

// Contact is a single address-book record. ID and CreatedAt are assigned by
// the store and never change afterwards.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"createdAt"`
}

// Draft returns the user-editable fields of c
func (c Contact) Draft() ContactDraft {
	return ContactDraft{Name: c.Name, Email: c.Email, Phone: c.Phone, Company: c.Company}
}

// ContactDraft holds the fields a user supplies when creating or editing a contact
type ContactDraft struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// Trimmed returns a copy of d with surrounding whitespace removed from every field
func (d ContactDraft) Trimmed() ContactDraft {
	return ContactDraft{
		Name:    strings.TrimSpace(d.Name),
		Email:   strings.TrimSpace(d.Email),
		Phone:   strings.TrimSpace(d.Phone),
		Company: strings.TrimSpace(d.Company),
	}
}

// ContactPatch is a partial update. Nil fields are left untouched.
type ContactPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Company  *string `json:"company,omitempty"`
	Favorite *bool   `json:"favorite,omitempty"`
}

// Apply returns c with the non-nil fields of p applied
func (p ContactPatch) Apply(c Contact) Contact {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	if p.Favorite != nil {
		c.Favorite = *p.Favorite
	}
	return c
}

// ActivityLogEntry is one immutable line of the audit trail. ContactName is a
// snapshot, not a reference: entries outlive the contact they describe.
type ActivityLogEntry struct {
	ID          string     `json:"id,omitempty"`
	Action      ActionType `json:"action"`
	ContactName string     `json:"contactName"`
	Timestamp   time.Time  `json:"timestamp"`
}

// ViewConfig is the transient view state: what to search for, how to sort
// and whether only favorites are shown
type ViewConfig struct {
	Keyword       string  `json:"keyword"`
	SortKey       SortKey `json:"sort"`
	FavoritesOnly bool    `json:"favorites_only"`
}

// CompanyCount is one slice of the company breakdown
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Stats summarizes the full (unfiltered) contact collection
type Stats struct {
	Total           int            `json:"total"`
	UniqueCompanies int            `json:"unique_companies"`
	FavoriteCount   int            `json:"favorites"`
	Companies       []CompanyCount `json:"companies,omitempty"`
}

// Config holds client-side settings persisted between runs
type Config struct {
	ServerURL      string `json:"server_url,omitempty"`
	Timeout        string `json:"timeout,omitempty"`
	ActivityWindow int    `json:"activity_window,omitempty"`
	Collation      string `json:"collation,omitempty"`
}
