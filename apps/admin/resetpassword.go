package main

import (
	"context"

	"github.com/trezcool/mwalimu/core/teacher"
)

func (cli *commandLine) resetPassword(rp teacher.ResetPassword) error {
	ctx := context.Background()
	if err := rp.Validate(ctx, cli.validate, cli.teacherSvc); err != nil {
		return cli.describe(err)
	}
	return cli.teacherSvc.ResetPassword(ctx, rp)
}
