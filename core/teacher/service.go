package teacher

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mwalimu/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound           = core.NewNotFoundError("teacher not found")
	ErrEmailExists        = errors.New("a teacher with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
)

type (
	Repository interface {
		// CreateTeacher returns ErrEmailExists when the email is taken.
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		GetTeacherByID(ctx context.Context, id int) (Teacher, error)
		GetTeacherByEmail(ctx context.Context, email string) (Teacher, error)
		// UpdateTeacher saves the password hash, active flag, last login and update time of t.
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	now := nowFunc().UTC()
	t := Teacher{
		Name:      nt.Name,
		Email:     nt.Email,
		School:    nt.School,
		Phone:     nt.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.SetPassword(nt.Password); err != nil {
		return Teacher{}, err
	}

	t, err := svc.repo.CreateTeacher(ctx, t)
	if errors.Cause(err) == ErrEmailExists {
		return Teacher{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
	}
	return t, err
}

func (svc *Service) GetByID(ctx context.Context, id int) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Teacher, error) {
	return svc.repo.GetTeacherByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Authenticate checks the credentials and records the login time.
func (svc *Service) Authenticate(ctx context.Context, l Login) (Teacher, error) {
	t, err := svc.repo.GetTeacherByEmail(ctx, l.Email)
	if err != nil {
		if core.IsNotFound(err) {
			return Teacher{}, ErrInvalidCredentials
		}
		return Teacher{}, errors.Wrap(err, "finding teacher by email")
	}
	if err = t.CheckPassword(l.Password); err != nil {
		return Teacher{}, ErrInvalidCredentials
	}
	if !t.IsActive {
		return Teacher{}, ErrAccountDeactivated
	}

	now := nowFunc().UTC()
	t.LastLogin = null.TimeFrom(now)
	t.UpdatedAt = now
	t, err = svc.repo.UpdateTeacher(ctx, t)
	return t, errors.Wrap(err, "setting lastLogin")
}

func (svc *Service) ResetPassword(ctx context.Context, rp ResetPassword) error {
	t := rp.teacher
	if t.ID == 0 {
		var err error
		if t, err = svc.repo.GetTeacherByEmail(ctx, rp.Email); err != nil {
			return err
		}
	}
	if err := t.SetPassword(rp.Password); err != nil {
		return err
	}
	t.UpdatedAt = nowFunc().UTC()
	_, err := svc.repo.UpdateTeacher(ctx, t)
	return err
}
