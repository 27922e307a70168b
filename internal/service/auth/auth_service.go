package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/domain/dto"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/logger"
	"github.com/ougirez/supplytwin/internal/pkg/store"
	"github.com/ougirez/supplytwin/internal/pkg/utils"
)

var ErrUserExists = constants.NewCodedError("User already exists", 409)

type Service struct {
	store store.Store
}

func NewService(store store.Store) *Service {
	return &Service{store: store}
}

func (svc *Service) Signup(ctx context.Context, request *dto.SignupRequest) (*dto.StatusResponse, error) {
	email := request.Identity()
	if email == "" {
		return nil, fmt.Errorf("%w: email", constants.ErrMissingInput)
	}

	hash, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         request.Name,
		Role:         constants.RoleUser,
		Plan:         constants.PlanFree,
	}
	if err := svc.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, constants.ErrAlreadyExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("store.CreateUser: %w", err)
	}

	logger.Infof(ctx, "signup: userID: [%v]", user.ID)

	return &dto.StatusResponse{Status: "success", Message: "User created"}, nil
}

func (svc *Service) Login(ctx context.Context, request *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := svc.store.GetUserByEmail(ctx, request.Identity())
	if errors.Is(err, constants.ErrDBNotFound) {
		return nil, constants.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("store.GetUserByEmail: %w", err)
	}

	ok, err := utils.CheckPassword(user.PasswordHash, request.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, constants.ErrInvalidCredentials
	}

	logger.Debugf(ctx, "login: userID: [%v]", user.ID)

	authToken, err := utils.GenerateAuthToken(&utils.AuthTokenWrapper{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Plan:   user.Plan,
	})
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: authToken,
		TokenType:   "bearer",
		Role:        user.Role,
		Plan:        user.Plan,
		UserName:    displayName(user),
	}, nil
}

func displayName(user *domain.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}
