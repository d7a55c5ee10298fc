package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/teacher"
	appfs "github.com/trezcool/mwalimu/fs"
	"github.com/trezcool/mwalimu/storage/database"
	sqlxrepos "github.com/trezcool/mwalimu/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	// set up validators
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	teacher.RegisterValidators(validate, translator)
	if f, err := appfs.FS.Open(appfs.CommonPasswords); err == nil {
		errAndDie(teacher.LoadCommonPasswords(f))
		_ = f.Close()
	}

	// start CLI
	cli := commandLine{
		db:         db.DB,
		teacherSvc: teacher.NewService(sqlxrepos.NewTeacherRepository(db)),
		validate:   validate,
		translator: translator,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
