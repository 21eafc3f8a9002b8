package admin

import (
	"time"

	"huntboard/internal/directory/models"
)

// LoginRequest carries the admin credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// UserResponse is one directory entry as served over HTTP.
type UserResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email,omitempty"`
	DisplayName        string    `json:"displayName,omitempty"`
	JoinDate           time.Time `json:"joinDate"`
	LastActive         time.Time `json:"lastActive"`
	TotalApplications  int       `json:"totalApplications"`
	DeviceType         string    `json:"deviceType"`
	DeviceLabel        string    `json:"deviceLabel,omitempty"`
	AuthMode           string    `json:"authMode"`
	Status             string    `json:"status"`
	IsAdmin            bool      `json:"isAdmin"`
	SessionCount       int       `json:"sessionCount"`
	AvgSessionDuration string    `json:"avgSessionDuration,omitempty"`
}

// UsersListResponse wraps the directory listing.
type UsersListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// Response mapping functions - convert domain objects to HTTP DTOs

func toUsersListResponse(users []models.UserRecord) UsersListResponse {
	responses := make([]UserResponse, len(users))
	for i, u := range users {
		responses[i] = toUserResponse(u)
	}
	return UsersListResponse{
		Users: responses,
		Total: len(responses),
	}
}

func toUserResponse(u models.UserRecord) UserResponse {
	resp := UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		DisplayName:       u.DisplayName,
		JoinDate:          u.JoinedAt,
		LastActive:        u.LastActiveAt,
		TotalApplications: u.TotalApplications,
		DeviceType:        string(u.Device),
		DeviceLabel:       u.DeviceLabel,
		AuthMode:          string(u.AuthMode),
		Status:            string(u.Status),
		IsAdmin:           u.Admin,
		SessionCount:      u.SessionCount,
	}
	if u.AvgSessionDuration > 0 {
		resp.AvgSessionDuration = u.AvgSessionDuration.String()
	}
	return resp
}
