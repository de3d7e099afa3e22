package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name      string          `json:"name"`
	Email     string          `json:"email" gorm:"unique;not null"`
	Password  string          `json:"-"`
	AvatarURL string          `json:"avatar_url"`
	Accounts  []SocialAccount `json:"-" gorm:"foreignKey:UserID"`
}

func (user *User) BeforeSave(tx *gorm.DB) (err error) {
	if user.Password != "" && !strings.HasPrefix(user.Password, "$2") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.Password = string(hashedPassword)
	}
	return nil
}
