package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/user"
	"github.com/trezcool/econspark/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	gooseRunFunc     = database.Migrate  // mockable

	errHelp     = errors.New("help provided")
	errNoDB     = errors.New("this command needs the postgres database engine")
	errPwdMatch = errors.New("passwords do not match")
)

type commandLine struct {
	db     *sql.DB // nil with the in-memory engine
	usrSvc *user.Service
	logger core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS]                     - run a goose command (up, up-to VERSION, down, status, ...)")
	fmt.Println("  adduser -username USERNAME [-role ROLE]    - create a user (teacher|student); the password is prompted")
	fmt.Println("  resetpassword -username USERNAME           - reset user's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserUname := addUserCmd.String("username", "", "The new user's username. The password will be prompted next.")
	addUserRole := addUserCmd.String("role", string(user.RoleStudent), "teacher or student")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		confirm, err := promptPassword("Confirm password:")
		if err != nil {
			return err
		}
		if confirm != pwd {
			return errPwdMatch
		}
		return cli.addUser(*addUserUname, pwd, user.Role(*addUserRole))

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
