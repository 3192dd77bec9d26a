package http

import (
	"time"

	"github.com/vibast-solutions/ms-go-nutrition/app/entity"
)

const LogoutMessage = "Successfully logged out"

type LogoutResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CalorieGoal *int64    `json:"calorie_goal"`
	CreatedAt   time.Time `json:"created_at"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func NewUserResponse(user *entity.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
	if user.CalorieGoal.Valid {
		goal := user.CalorieGoal.Int64
		resp.CalorieGoal = &goal
	}
	return resp
}
