// Package main provides the entry point for the dashstarter application.
// It initializes and runs a web server using the Fiber framework that serves
// a sign-up/sign-in flow, per-user profile management with avatar upload, and
// an admin area for managing user accounts and their role assignments. The
// application uses gorm for data persistence against a relational database.
package main

import (
	"os"

	"github.com/dashstarter/dashstarter/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
