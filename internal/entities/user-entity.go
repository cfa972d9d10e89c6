package entities

import "time"

type User struct {
	ID        uint64     `db:"id"`
	Fio       string     `db:"fio"`
	Email     string     `db:"email"`
	Login     string     `db:"login"`
	Password  string     `db:"password"`
	Position  *string    `db:"position"`
	IsActive  bool       `db:"is_active"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}
