package teacher

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

const passwordResetTemplate = "password_reset"

// PasswordResetData is the data of the password_reset email templates.
type PasswordResetData struct {
	TeacherName string
	UID         string
	Token       string
}

// PasswordResetConfirm sets a new password with a token received by email.
type PasswordResetConfirm struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`

	teacher Teacher
}

// Validate checks the token before the password policy. An invalid or expired token is a ValidationError.
func (pc *PasswordResetConfirm) Validate(ctx context.Context, validate *validator.Validate, pr *PasswordResetter) error {
	t, err := pr.teacherFor(ctx, pc.UID, pc.Token)
	if err != nil {
		return err
	}
	pc.teacher = t
	return validate.Struct(pc)
}

// PasswordResetter runs the "forgot password" flow of teachers.
type PasswordResetter struct {
	svc     *Service
	tokens  *ResetTokens
	mailSvc core.EmailService
	logger  core.Logger
}

func NewPasswordResetter(svc *Service, tokens *ResetTokens, mailSvc core.EmailService, logger core.Logger) *PasswordResetter {
	return &PasswordResetter{svc: svc, tokens: tokens, mailSvc: mailSvc, logger: logger}
}

// Request emails a password reset link to the teacher. Unknown & deactivated accounts are ignored.
func (pr *PasswordResetter) Request(ctx context.Context, email string) error {
	email = core.CleanString(email, true /* lower */)
	t, err := pr.svc.GetByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			pr.logger.Info(fmt.Sprintf("teacher.PasswordResetter: no teacher with email %q", email))
			return nil
		}
		return errors.Wrap(err, "finding teacher by email")
	}
	if !t.IsActive {
		return nil
	}

	pr.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: t.Name, Address: t.Email}},
		Subject:      "Password reset",
		TemplateName: passwordResetTemplate,
		TemplateData: PasswordResetData{
			TeacherName: t.Name,
			UID:         EncodeUID(t),
			Token:       pr.tokens.Make(t),
		},
	})
	return nil
}

// Confirm sets the new password. pc must have been validated.
func (pr *PasswordResetter) Confirm(ctx context.Context, pc PasswordResetConfirm) error {
	t := pc.teacher
	if t.ID == 0 {
		var err error
		if t, err = pr.teacherFor(ctx, pc.UID, pc.Token); err != nil {
			return err
		}
	}
	return pr.svc.ResetPassword(ctx, ResetPassword{Email: t.Email, Password: pc.Password, teacher: t})
}

func (pr *PasswordResetter) teacherFor(ctx context.Context, uid, token string) (Teacher, error) {
	invalid := func(err error) error {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}

	id, err := DecodeUID(uid)
	if err != nil {
		return Teacher{}, invalid(err)
	}
	t, err := pr.svc.GetByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return Teacher{}, invalid(ErrInvalidToken)
		}
		return Teacher{}, err
	}
	if err = pr.tokens.Verify(t, token); err != nil {
		return Teacher{}, invalid(err)
	}
	return t, nil
}
