package service

import (
	"context"
	"errors"
	"strings"

	"irma-verse/internal/model"
	"irma-verse/internal/repository"
	"irma-verse/pkg/apperr"
	"irma-verse/pkg/jwt"
	"irma-verse/pkg/password"
	"irma-verse/pkg/sanitize"
)

type UserService struct {
	repo       *repository.UserRepository
	jwtService *jwt.JWTService
}

func NewUserService(repo *repository.UserRepository, jwtService *jwt.JWTService) *UserService {
	return &UserService{repo: repo, jwtService: jwtService}
}

// ProfileInput 资料修改，nil 字段保持不变
type ProfileInput struct {
	Name    *string
	Phone   *string
	Address *string
	Bio     *string
	Avatar  *string
	Class   *string
}

// Register 注册，默认角色为 user
func (s *UserService) Register(ctx context.Context, name, email, plainPassword string) (*model.User, string, error) {
	name = sanitize.Text(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, "", apperr.Validation("name and email are required")
	}

	hash, err := password.Hash(plainPassword)
	if errors.Is(err, password.ErrTooShort) {
		return nil, "", apperr.Validation(err.Error())
	}
	if err != nil {
		return nil, "", apperr.Internal(err, "")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login 登录，邮箱或密码错误统一返回 invalid credentials
func (s *UserService) Login(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return nil, "", apperr.Validation("email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, "", apperr.Unauthorized("invalid credentials")
		}
		return nil, "", err
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, "", apperr.Unauthorized("invalid credentials")
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout 吊销当前会话（未启用吊销存储时无操作）
func (s *UserService) Logout(ctx context.Context, claims *jwt.CustomClaims) error {
	if err := s.jwtService.Revoke(ctx, claims); err != nil {
		return apperr.Internal(err, "failed to end session")
	}
	return nil
}

// GetProfile 获取个人资料
func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile 修改个人资料，自由文本去除HTML
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	fields := make(map[string]interface{})

	if in.Name != nil {
		name := sanitize.Text(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		fields["name"] = name
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone != "" && !sanitize.ValidPhone(phone) {
			return nil, apperr.Validation("invalid phone number")
		}
		fields["phone"] = phone
	}
	if in.Address != nil {
		fields["address"] = sanitize.Text(*in.Address)
	}
	if in.Bio != nil {
		fields["bio"] = sanitize.Text(*in.Bio)
	}
	if in.Avatar != nil {
		fields["avatar"] = strings.TrimSpace(*in.Avatar)
	}
	if in.Class != nil {
		fields["class"] = sanitize.Text(*in.Class)
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateProfile(ctx, userID, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) issueToken(u *model.User) (string, error) {
	token, err := s.jwtService.GenerateToken(u.ID, map[string]interface{}{
		"name": u.Name,
		"role": u.Role,
	})
	if err != nil {
		return "", apperr.Internal(err, "failed to create session")
	}
	return token, nil
}
