package services

import (
	"strings"
	"time"

	"mybus/internal/auth"
	"mybus/internal/domain"
	"mybus/internal/domain/models"
	"mybus/internal/repositories"
	"mybus/internal/utils"
)

// UserService implements registration, login, profile and admin user
// management on top of the user repository and the token service.
type UserService struct {
	Users  repositories.UserRepository
	Tokens auth.TokenService
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
}

// Register creates a self-serve account. Role defaults to USER and any
// value outside {USER, ADMIN} is coerced to USER.
func (s UserService) Register(in RegisterInput) (models.User, error) {
	name := utils.TrimOrEmpty(in.Name)
	email := utils.NormalizeEmail(in.Email)
	phone := utils.TrimOrEmpty(in.Phone)
	if name == "" || email == "" || phone == "" || in.Password == "" {
		return models.User{}, domain.ValidationError{Msg: "name, email, phone and password are required"}
	}

	if _, err := s.Users.FindByEmail(email); err == nil {
		return models.User{}, domain.ConflictError{Resource: "user", Msg: "email already exists"}
	} else if !domain.IsNotFound(err) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "failed to hash password", Err: err}
	}

	user, err := s.Users.Create(models.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         models.NormalizeRole(strings.ToUpper(utils.TrimOrEmpty(in.Role))),
		Status:       models.StatusActive,
	})
	if err != nil {
		return models.User{}, err
	}
	utils.LogEvent("", "user", "register", "id="+user.ID)
	return user, nil
}

// Login checks credentials and issues a token carrying the user's current
// role. Unknown email and wrong password produce the same error so callers
// cannot enumerate accounts.
func (s UserService) Login(email, password string) (string, models.User, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", models.User{}, domain.ValidationError{Msg: "email and password are required"}
	}

	user, err := s.Users.FindByEmail(email)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", models.User{}, domain.UnauthorizedError{Msg: "invalid email or password"}
		}
		return "", models.User{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", models.User{}, domain.UnauthorizedError{Msg: "invalid email or password"}
	}

	now := time.Now().UTC()
	if err := s.Users.UpdateLastLogin(user.ID, now); err != nil {
		return "", models.User{}, err
	}
	user.LastLogin = &now

	token, err := s.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", models.User{}, domain.InternalError{Msg: "failed to issue token", Err: err}
	}
	utils.LogEvent("", "user", "login", "id="+user.ID)
	return token, user, nil
}

func (s UserService) Profile(userID string) (models.User, error) {
	return s.Users.FindByID(userID)
}

// ProfileUpdate carries self-serve profile changes; nil means untouched.
type ProfileUpdate struct {
	Name     *string
	Phone    *string
	Email    *string
	Password *string
}

// UpdateProfile applies the provided fields. A new email that belongs to a
// different user is rejected with Conflict before anything is written, so
// the original email stays unchanged. The password is re-hashed only when a
// non-blank value is supplied.
func (s UserService) UpdateProfile(userID string, in ProfileUpdate) (models.User, error) {
	if _, err := s.Users.FindByID(userID); err != nil {
		return models.User{}, err
	}

	set := repositories.UserUpdate{Name: in.Name, Phone: in.Phone}

	if in.Email != nil {
		email := utils.NormalizeEmail(*in.Email)
		if email == "" {
			return models.User{}, domain.ValidationError{Field: "email", Msg: "must not be empty"}
		}
		if other, err := s.Users.FindByEmail(email); err == nil && other.ID != userID {
			return models.User{}, domain.ConflictError{Resource: "user", Msg: "email already in use"}
		} else if err != nil && !domain.IsNotFound(err) {
			return models.User{}, err
		}
		set.Email = &email
	}

	if in.Password != nil && strings.TrimSpace(*in.Password) != "" {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return models.User{}, domain.InternalError{Msg: "failed to hash password", Err: err}
		}
		set.PasswordHash = &hash
	}

	return s.Users.Update(userID, set)
}

func (s UserService) ListUsers(search, role, status string) ([]models.User, error) {
	return s.Users.List(search, role, status)
}

type AdminCreateInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
	Status   string
}

// CreateUser is the admin variant of Register: phone is optional and the
// initial status may be set.
func (s UserService) CreateUser(in AdminCreateInput) (models.User, error) {
	name := utils.TrimOrEmpty(in.Name)
	email := utils.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return models.User{}, domain.ValidationError{Msg: "name, email and password are required"}
	}

	if _, err := s.Users.FindByEmail(email); err == nil {
		return models.User{}, domain.ConflictError{Resource: "user", Msg: "email already exists"}
	} else if !domain.IsNotFound(err) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "failed to hash password", Err: err}
	}

	status := strings.ToUpper(utils.TrimOrEmpty(in.Status))
	if status == "" {
		status = models.StatusActive
	}

	user, err := s.Users.Create(models.User{
		Name:         name,
		Email:        email,
		Phone:        utils.TrimOrEmpty(in.Phone),
		PasswordHash: hash,
		Role:         models.NormalizeRole(strings.ToUpper(utils.TrimOrEmpty(in.Role))),
		Status:       status,
	})
	if err != nil {
		return models.User{}, err
	}
	utils.LogEvent("", "user", "admin_create", "id="+user.ID)
	return user, nil
}

// AdminUpdateInput carries admin-side user changes; nil means untouched.
type AdminUpdateInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
	Role     *string
	Status   *string
}

func (s UserService) UpdateUser(id string, in AdminUpdateInput) (models.User, error) {
	if _, err := s.Users.FindByID(id); err != nil {
		return models.User{}, err
	}

	set := repositories.UserUpdate{Name: in.Name, Phone: in.Phone}

	if in.Email != nil {
		email := utils.NormalizeEmail(*in.Email)
		if email == "" {
			return models.User{}, domain.ValidationError{Field: "email", Msg: "must not be empty"}
		}
		if other, err := s.Users.FindByEmail(email); err == nil && other.ID != id {
			return models.User{}, domain.ConflictError{Resource: "user", Msg: "email already in use"}
		} else if err != nil && !domain.IsNotFound(err) {
			return models.User{}, err
		}
		set.Email = &email
	}
	if in.Role != nil {
		role := models.NormalizeRole(strings.ToUpper(utils.TrimOrEmpty(*in.Role)))
		set.Role = &role
	}
	if in.Status != nil {
		status := strings.ToUpper(utils.TrimOrEmpty(*in.Status))
		set.Status = &status
	}
	if in.Password != nil && strings.TrimSpace(*in.Password) != "" {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return models.User{}, domain.InternalError{Msg: "failed to hash password", Err: err}
		}
		set.PasswordHash = &hash
	}

	return s.Users.Update(id, set)
}

func (s UserService) DeleteUser(id string) error {
	if err := s.Users.Delete(id); err != nil {
		return err
	}
	utils.LogEvent("", "user", "admin_delete", "id="+id)
	return nil
}
