package domain

import "github.com/google/uuid"

// User is a platform account that can be linked to vendors and clients.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	FullName    string    `json:"fullName"`
	PhoneNumber string    `json:"phoneNumber"`
}

// Vendor is a third party under assessment. Empty email fields mean "not set".
type Vendor struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenantId"`
	Name         string    `json:"name"`
	SupportEmail string    `json:"supportEmail"`
	InfoSecEmail string    `json:"infoSecEmail"`
	PrivacyEmail string    `json:"privacyEmail"`
	Users        []User    `json:"users"`
}

// Client mirrors Vendor without a support contact.
type Client struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenantId"`
	Name         string    `json:"name"`
	InfoSecEmail string    `json:"infoSecEmail"`
	PrivacyEmail string    `json:"privacyEmail"`
	Users        []User    `json:"users"`
}

// UserIDs returns the ids of the given users in order.
func UserIDs(users []User) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
