package types

import "time"

// Business is a registered SME on the platform.
type Business struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	PANNumber string    `json:"panNumber,omitempty"`
	District  string    `json:"district,omitempty"`
	Sector    string    `json:"sector,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Request types

type BusinessCreate struct {
	Name      string `json:"name" binding:"required,max=200"`
	PANNumber string `json:"panNumber,omitempty" binding:"omitempty,max=20"`
	District  string `json:"district,omitempty" binding:"omitempty,max=100"`
	Sector    string `json:"sector,omitempty" binding:"omitempty,max=100"`
	Email     string `json:"email,omitempty" binding:"omitempty,email"`
}

type BusinessUpdate struct {
	Name      *string `json:"name,omitempty" binding:"omitempty,max=200"`
	PANNumber *string `json:"panNumber,omitempty" binding:"omitempty,max=20"`
	District  *string `json:"district,omitempty" binding:"omitempty,max=100"`
	Sector    *string `json:"sector,omitempty" binding:"omitempty,max=100"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
}

// EmailData is the payload handed to the email service.
type EmailData struct {
	To           string
	Subject      string
	TemplateData map[string]interface{}
}
