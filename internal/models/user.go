// Package models содержит доменные модели сервиса: пользователей, расходы
// и строки распределения суммы между участниками, а также виды ошибок
// предметной области.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultIPAddress записывается, если адрес клиента при регистрации неизвестен.
const DefaultIPAddress = "unknownIp"

// User представляет зарегистрированного пользователя.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"` // всегда в нижнем регистре
	Name          string    `json:"name"`
	PasswordHash  string    `json:"-"`
	EmailVerified bool      `json:"email_verified"`
	IPAddress     string    `json:"ip_address"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Profile — публичная часть пользователя, которую отдаёт GET /api/auth/u.
type Profile struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Profile возвращает публичный профиль пользователя.
func (u *User) Profile() Profile {
	return Profile{
		Email:    u.Email,
		Username: u.Username,
		Name:     u.Name,
	}
}
