package main

import (
	"context"
	"fmt"

	"github.com/trezcool/mwalimu/core/teacher"
)

func (cli *commandLine) addTeacher(nt teacher.NewTeacher) error {
	if err := nt.Validate(cli.validate); err != nil {
		return cli.describe(err)
	}
	t, err := cli.teacherSvc.Create(context.Background(), nt)
	if err != nil {
		return err
	}
	fmt.Printf("Teacher %q created (id %d)\n", t.Email, t.ID)
	return nil
}
