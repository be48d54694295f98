package models

import (
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultSuperuser 初始化默认超级用户
func InitDefaultSuperuser(username, password string) (*User, error) {
	var count int64
	if err := DB.Model(&User{}).Where("is_super = ?", true).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := User{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  "Administrador",
		AccessLevel:  constants.UserAccessFull,
		IsSuper:      true,
		IsActive:     true,
	}
	if err := DB.Create(&user).Error; err != nil {
		return nil, err
	}

	if password == "admin123" {
		logger.Warnw("default_superuser_created_with_default_password", "username", username)
		logger.Warnw("default_superuser_password_change_required", "username", username)
	} else {
		logger.Warnw("default_superuser_created", "username", username, "password_hidden", true)
	}
	return &user, nil
}
