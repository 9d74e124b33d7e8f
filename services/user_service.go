package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"
	"tradecal/models"

	"github.com/jmoiron/sqlx"
)

// UserService 用户服务
type UserService struct {
	db *sqlx.DB
}

// NewUserService 创建用户服务
func NewUserService(db *sqlx.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByEmail 根据邮箱获取用户
func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, email, nickname, password_hash, oauth_provider, oauth_provider_id,
		       oauth_email, profile_image, created_at, updated_at
		FROM users
		WHERE email = ?
	`
	err := s.db.Get(&user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("用户不存在")
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID 根据ID获取用户
func (s *UserService) GetUserByID(id int64) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, email, nickname, password_hash, oauth_provider, oauth_provider_id,
		       oauth_email, profile_image, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	err := s.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("用户不存在")
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser 创建用户
func (s *UserService) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (email, nickname, password_hash, oauth_provider, oauth_provider_id,
		                   oauth_email, profile_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.Exec(
		query,
		user.Email,
		user.Nickname,
		user.PasswordHash,
		user.OAuthProvider,
		user.OAuthProviderID,
		user.OAuthEmail,
		user.ProfileImage,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return err
	}

	// 获取插入的ID
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id

	return nil
}

// UpdateUser 更新用户
func (s *UserService) UpdateUser(user *models.User) error {
	query := `
		UPDATE users
		SET email = ?, nickname = ?, password_hash = ?, oauth_provider = ?,
		    oauth_provider_id = ?, oauth_email = ?, profile_image = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.Exec(
		query,
		user.Email,
		user.Nickname,
		user.PasswordHash,
		user.OAuthProvider,
		user.OAuthProviderID,
		user.OAuthEmail,
		user.ProfileImage,
		user.UpdatedAt,
		user.ID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("用户不存在")
	}

	return nil
}

// EmailExists 检查邮箱是否存在
func (s *UserService) EmailExists(email string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE email = ?`
	err := s.db.Get(&count, query, email)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ==================== OAuth ====================

// FindOrCreateOAuthUser OAuth登录后解析用户
// 解析顺序：1. 按(provider, provider_id)精确匹配
//           2. 按邮箱匹配已有账号并绑定OAuth信息（账号合并）
//           3. 创建纯OAuth新用户
func (s *UserService) FindOrCreateOAuthUser(provider, providerID, email string) (*models.User, error) {
	// 1. 按OAuth标识查找
	var user models.User
	query := `
		SELECT id, email, nickname, password_hash, oauth_provider, oauth_provider_id,
		       oauth_email, profile_image, created_at, updated_at
		FROM users
		WHERE oauth_provider = ? AND oauth_provider_id = ?
	`
	err := s.db.Get(&user, query, provider, providerID)
	if err == nil {
		return &user, nil
	}
	if err != sql.ErrNoRows {
		log.Printf("ERROR: Failed to look up OAuth user %s/%s: %v", provider, providerID, err)
		return nil, err
	}

	// 2. 按邮箱查找已有账号，绑定OAuth信息
	query = `
		SELECT id, email, nickname, password_hash, oauth_provider, oauth_provider_id,
		       oauth_email, profile_image, created_at, updated_at
		FROM users
		WHERE email = ? OR oauth_email = ?
	`
	err = s.db.Get(&user, query, email, email)
	if err == nil {
		now := time.Now()
		_, err = s.db.Exec(
			`UPDATE users SET oauth_provider = ?, oauth_provider_id = ?, oauth_email = ?, updated_at = ? WHERE id = ?`,
			provider, providerID, email, now, user.ID,
		)
		if err != nil {
			log.Printf("ERROR: Failed to link OAuth to user id=%d: %v", user.ID, err)
			return nil, err
		}
		user.OAuthProvider = &provider
		user.OAuthProviderID = &providerID
		user.OAuthEmail = &email
		user.UpdatedAt = now
		log.Printf("INFO: Linked %s account to existing user id=%d", provider, user.ID)
		return &user, nil
	}
	if err != sql.ErrNoRows {
		log.Printf("ERROR: Failed to look up user by email for OAuth link: %v", err)
		return nil, err
	}

	// 3. 创建纯OAuth新用户
	now := time.Now()
	newUser := &models.User{
		OAuthProvider:   &provider,
		OAuthProviderID: &providerID,
		OAuthEmail:      &email,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.CreateUser(newUser); err != nil {
		log.Printf("ERROR: Failed to create OAuth user %s/%s: %v", provider, providerID, err)
		return nil, err
	}
	log.Printf("INFO: Created new OAuth user id=%d via %s", newUser.ID, provider)
	return newUser, nil
}

// UpdateProfileImage 更新用户头像路径
func (s *UserService) UpdateProfileImage(userID int64, imagePath string) error {
	query := `UPDATE users SET profile_image = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.Exec(query, imagePath, time.Now(), userID)
	if err != nil {
		log.Printf("ERROR: Failed to update profile image for user_id=%d: %v", userID, err)
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("用户不存在")
	}
	return nil
}
