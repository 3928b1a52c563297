package main

import (
	"context"

	"github.com/trezcool/econspark/core/user"
)

// addUser registers a user through the regular sign-up rules.
func (cli *commandLine) addUser(uname, pwd string, role user.Role) error {
	usr, err := cli.usrSvc.Register(context.Background(), user.NewUser{
		Username:        uname,
		Password:        pwd,
		PasswordConfirm: pwd,
		Role:            role,
	})
	if err != nil {
		return err
	}
	cli.logger.Info("user added", map[string]interface{}{"user_id": usr.ID, "username": usr.Username})
	return nil
}
