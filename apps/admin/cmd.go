package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"sort"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/mwalimu/core/teacher"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	teacherSvc *teacher.Service
	validate   *validator.Validate
	translator ut.Translator
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addteacher -name NAME -email EMAIL [-school SCHOOL] [-phone PHONE] - create a teacher account")
	fmt.Println("  resetpassword -email EMAIL - reset a teacher's password")
	fmt.Println("  migrate COMMAND [ARGS] - run a database migrations command (up, down, status, ...)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addTeacherCmd := flag.NewFlagSet("addteacher", flag.ContinueOnError)
	addTeacherName := addTeacherCmd.String("name", "", "The teacher's full name.")
	addTeacherEmail := addTeacherCmd.String("email", "", "The teacher's email. The password will be prompted next.")
	addTeacherSchool := addTeacherCmd.String("school", "", "The teacher's school.")
	addTeacherPhone := addTeacherCmd.String("phone", "", "The teacher's phone number (E.164).")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The teacher's email. The password will be prompted next.")

	switch args[1] {
	case "addteacher":
		if err := addTeacherCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addTeacherName == "" || *addTeacherEmail == "" {
			addTeacherCmd.Usage()
			return errHelp
		}
		pwd, confirm, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addTeacherCmd.Usage()
			return errHelp
		}
		return cli.addTeacher(teacher.NewTeacher{
			Name:            *addTeacherName,
			Email:           *addTeacherEmail,
			School:          *addTeacherSchool,
			Phone:           *addTeacherPhone,
			Password:        pwd,
			PasswordConfirm: confirm,
		})
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, confirm, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(teacher.ResetPassword{Email: *resetPasswordEmail, Password: pwd, PasswordConfirm: confirm})
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (pwd, confirm string, err error) {
	fmt.Print("Enter password:")
	p, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil || len(p) == 0 {
		return "", "", err
	}
	fmt.Print("Confirm password:")
	c, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", "", err
	}
	return string(p), string(c), nil
}

// describe renders validation errors as "field: message" lines.
func (cli *commandLine) describe(err error) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	msgs := make([]string, 0, len(vErrs))
	for _, vErr := range vErrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", vErr.Field(), vErr.Translate(cli.translator)))
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "\n"))
}
