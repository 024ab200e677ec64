package dto

import "github.com/RoyceAzure/lab/parkeat/internal/model"

type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"` //密碼明文
}

type RegisterDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type AuthResponse struct {
	User *model.User `json:"user"`
}

type OnboardingResponse struct {
	Seen bool `json:"seen"`
}
