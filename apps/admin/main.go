package main

import (
	"context"
	"os"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/user"
	logsvc "github.com/trezcool/econspark/services/logger"
	"github.com/trezcool/econspark/storage/database"
	"github.com/trezcool/econspark/storage/database/inmem"
	sqlxrepos "github.com/trezcool/econspark/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(logsvc.NewSlogLogger(conf).With("app", "admin"), conf)
	logger.Enable(!conf.Debug)

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator, conf.User)

	cli := commandLine{logger: logger}

	// set up DB
	if conf.Database.IsMemory() {
		cli.usrSvc = user.NewService(inmemdb.NewUserRepository(inmemdb.Open()), validate, translator, logger)
	} else {
		ctx := context.Background()
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			logger.Fatal("setting up database", err)
		}
		db, err := database.Open(conf)
		if err != nil {
			logger.Fatal("setting up database", err)
		}
		defer db.Close()
		if err = database.Ping(ctx, db); err != nil {
			logger.Fatal("setting up database", err)
		}
		cli.db = db.DB
		cli.usrSvc = user.NewService(sqlxrepos.NewUserRepository(db), validate, translator, logger)
	}

	// start CLI
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
