package model

import "time"

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Credential 帳號紀錄，demo 帳號與本地註冊帳號共用
// 密碼為明碼，僅供展示
type Credential struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c Credential) ToUser(createdAt time.Time) User {
	return User{
		ID:        c.ID,
		Username:  c.Username,
		Email:     c.Email,
		Name:      c.Name,
		Avatar:    c.Avatar,
		Phone:     c.Phone,
		CreatedAt: createdAt,
	}
}

// ProfileUpdate 部分更新，nil 欄位不變
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

func (u ProfileUpdate) ApplyTo(user *User) {
	if u.Username != nil {
		user.Username = *u.Username
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Avatar != nil {
		user.Avatar = *u.Avatar
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
}
