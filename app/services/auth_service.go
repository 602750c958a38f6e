// Package services holds the business rules. Controllers translate HTTP
// to service calls; services talk to repositories and never touch the
// request or response directly.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/repositories"
	"github.com/saydalia/saydalia/pkg/apperr"
	"github.com/saydalia/saydalia/pkg/auth"
	"github.com/saydalia/saydalia/pkg/logger"
)

// Arabic user-facing messages for the auth flows.
const (
	msgEmailTaken         = "البريد الإلكتروني مسجل مسبقاً"
	msgInvalidCredentials = "البريد الإلكتروني أو كلمة المرور غير صحيحة"
	msgMissingFields      = "يرجى تعبئة جميع الحقول المطلوبة"
	msgPharmacyRequired   = "يرجى إدخال بيانات الصيدلية"
)

type AuthService struct {
	users      repositories.UserRepository
	pharmacies repositories.PharmacyRepository
}

func NewAuthService(users repositories.UserRepository, pharmacies repositories.PharmacyRepository) *AuthService {
	return &AuthService{users: users, pharmacies: pharmacies}
}

// RegisterInput carries the registration payload. PharmacyInput must be
// present when Role is admin.
type RegisterInput struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role" validate:"nullable,in=user,admin"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`

	// Admin registrations carry the pharmacy either as a nested object
	// or flat: pharmacyName plus the shared address/phone fields.
	Pharmacy     *PharmacyInput `json:"pharmacy"`
	PharmacyName string         `json:"pharmacyName"`
}

// pharmacyInput normalizes the two admin payload shapes into one. The
// flat form reuses the registrant's address and phone for the pharmacy.
func (in RegisterInput) pharmacyInput() *PharmacyInput {
	if in.Pharmacy != nil {
		return in.Pharmacy
	}
	if strings.TrimSpace(in.PharmacyName) == "" {
		return nil
	}
	return &PharmacyInput{
		Name:    in.PharmacyName,
		Address: in.Address,
		Phone:   in.Phone,
	}
}

// PharmacyInput is the pharmacy payload embedded in admin registration
// and used standalone by the pharmacy endpoints.
type PharmacyInput struct {
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	Specialties  []string `json:"specialties"`
	WorkingHours string   `json:"workingHours"`
	Icon         string   `json:"icon"`
}

// AuthResult is what register and login hand back to the controller.
type AuthResult struct {
	Token    string           `json:"token"`
	User     models.User      `json:"user"`
	Pharmacy *models.Pharmacy `json:"pharmacy,omitempty"`
}

// Register creates an account. For admins it also creates the pharmacy;
// if the pharmacy write fails, the freshly created user is removed so a
// retry with the same email succeeds.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if in.Name == "" || in.Email == "" || in.Password == "" || strings.TrimSpace(in.Phone) == "" {
		return AuthResult{}, apperr.NewValidation(msgMissingFields)
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return AuthResult{}, apperr.NewValidation(msgMissingFields)
	}

	pharmacyIn := in.pharmacyInput()
	if role == models.RoleAdmin {
		if pharmacyIn == nil ||
			strings.TrimSpace(pharmacyIn.Name) == "" ||
			strings.TrimSpace(pharmacyIn.Address) == "" ||
			strings.TrimSpace(pharmacyIn.Phone) == "" {
			return AuthResult{}, apperr.NewValidation(msgPharmacyRequired)
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, apperr.NewInternal(err)
	}

	user := models.User{
		Name:       in.Name,
		Email:      in.Email,
		Password:   hash,
		Role:       role,
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		PostalCode: in.PostalCode,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return AuthResult{}, apperr.NewConflict(msgEmailTaken)
		}
		return AuthResult{}, apperr.NewInternal(err)
	}

	var pharmacy *models.Pharmacy
	if role == models.RoleAdmin {
		p := models.Pharmacy{
			Name:         strings.TrimSpace(pharmacyIn.Name),
			Address:      pharmacyIn.Address,
			Phone:        pharmacyIn.Phone,
			Rating:       models.DefaultRating,
			Specialties:  pharmacyIn.Specialties,
			WorkingHours: pharmacyIn.WorkingHours,
			Icon:         pharmacyIn.Icon,
			Admin:        user.ID,
			Medicines:    []models.Medicine{},
		}
		if err := s.pharmacies.Create(ctx, &p); err != nil {
			// Compensate: drop the half-registered account.
			if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
				logger.Error("register: compensating user delete failed", "user", user.ID.Hex(), "error", delErr)
			}
			if errors.Is(err, repositories.ErrDuplicate) {
				return AuthResult{}, apperr.NewConflict(msgPharmacyExists)
			}
			return AuthResult{}, apperr.NewInternal(err)
		}
		if err := s.users.SetPharmacy(ctx, user.ID, &p.ID); err != nil {
			logger.Error("register: linking pharmacy to admin failed", "user", user.ID.Hex(), "error", err)
		} else {
			user.Pharmacy = &p.ID
		}
		pharmacy = &p
	}

	token, err := auth.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		return AuthResult{}, apperr.NewInternal(err)
	}

	return AuthResult{Token: token, User: user.Sanitize(), Pharmacy: pharmacy}, nil
}

// LoginInput carries the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login verifies the credentials and issues a token. An unknown email and
// a wrong password produce the same message, so the response does not
// reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || in.Password == "" {
		return AuthResult{}, apperr.NewValidation(msgMissingFields)
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return AuthResult{}, apperr.NewAuth(msgInvalidCredentials)
		}
		return AuthResult{}, apperr.NewInternal(err)
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return AuthResult{}, apperr.NewAuth(msgInvalidCredentials)
	}

	token, err := auth.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		return AuthResult{}, apperr.NewInternal(err)
	}

	var pharmacy *models.Pharmacy
	if user.IsAdmin() {
		if p, err := s.pharmacies.FindByAdmin(ctx, user.ID); err == nil {
			pharmacy = &p
		}
	}

	return AuthResult{Token: token, User: user.Sanitize(), Pharmacy: pharmacy}, nil
}
