package teacher

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/gradebook"
)

const atRiskTemplate = "student_at_risk"

// AtRiskMailer emails the teacher when one of their students becomes at-risk.
type AtRiskMailer struct {
	repo    Repository
	mailSvc core.EmailService
	logger  core.Logger
}

var _ gradebook.Notifier = (*AtRiskMailer)(nil)

func NewAtRiskMailer(repo Repository, mailSvc core.EmailService, logger core.Logger) *AtRiskMailer {
	return &AtRiskMailer{repo: repo, mailSvc: mailSvc, logger: logger}
}

// StudentAtRiskData is the data of the student_at_risk email templates.
type StudentAtRiskData struct {
	TeacherName  string
	StudentID    int
	StudentName  string
	Grade        int
	Class        string
	OverallGrade int
}

func (m *AtRiskMailer) StudentAtRisk(ctx context.Context, teacherID int, s gradebook.Student) {
	t, err := m.repo.GetTeacherByID(ctx, teacherID)
	if err != nil {
		m.logger.Error(fmt.Sprintf("teacher.AtRiskMailer: finding teacher %d: %v", teacherID, err), err)
		return
	}

	m.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: t.Name, Address: t.Email}},
		Subject:      fmt.Sprintf("%s needs support", s.Name),
		TemplateName: atRiskTemplate,
		TemplateData: StudentAtRiskData{
			TeacherName:  t.Name,
			StudentID:    s.ID,
			StudentName:  s.Name,
			Grade:        s.Grade,
			Class:        s.Class,
			OverallGrade: s.OverallGrade(),
		},
	})
}
