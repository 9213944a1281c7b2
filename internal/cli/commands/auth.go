package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewLoginCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			if password == "" {
				password = os.Getenv("SCOPECTL_PASSWORD")
			}

			if username == "" || password == "" {
				return errors.New("--username and --password (or SCOPECTL_PASSWORD) are required")
			}

			tok, err := app.Session.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			if app.SaveSession != nil {
				err = app.SaveSession()
				if err != nil {
					return err
				}
			}

			msg := fmt.Sprintf("logged in as %s", username)
			if !tok.Expiry.IsZero() {
				msg += fmt.Sprintf(", session valid until %s", tok.Expiry.Local().Format("2006-01-02 15:04"))
			}

			return app.Renderer.Message(msg)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password")

	return cmd
}

func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			logoutErr := app.Session.Logout(cmd.Context())

			if app.SaveSession != nil {
				err = app.SaveSession()
				if err != nil {
					return err
				}
			}

			if logoutErr != nil {
				return logoutErr
			}

			return app.Renderer.Message("logged out")
		},
	}
}
