package domain

import "context"

type User struct {
	UserID   int    `gorm:"primaryKey;autoIncrement" json:"user_id"`
	Username string `gorm:"type:varchar(100);not null;unique" json:"username"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`
	Role     string `gorm:"type:role_enum;not null" json:"role"`
}

type UserRepo interface {
	FindUserByUsername(ctx context.Context, username string) (*User, error)
}
