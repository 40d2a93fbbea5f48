package domain

import "time"

// User описывает владельца корзин и заказов.
// Аутентификация живёт во внешнем прокси, здесь только идентичность.
type User struct {
	ID        int64
	Name      string
	Email     string
	IsAdmin   bool
	CreatedAt time.Time
}
