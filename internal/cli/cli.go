// Package cli is the text-menu front end. It collects primitive inputs,
// calls into the core services, and prints the results; no workflow rule
// lives here.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shokrpour/thesisflow/internal/app"
	"github.com/shokrpour/thesisflow/internal/directory"
	"github.com/shokrpour/thesisflow/internal/metrics"
	"github.com/shokrpour/thesisflow/internal/models"
)

type Runner struct {
	service *app.Service
	in      *bufio.Scanner
	out     io.Writer
}

func New(service *app.Service) *Runner {
	return &Runner{
		service: service,
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
	}
}

// Run drives the main menu until the user exits.
func (r *Runner) Run() error {
	for {
		r.printf("\nThesis Management System")
		r.printf("========================")
		r.printf("1. Student/Professor Login")
		r.printf("2. Reviewer Login")
		r.printf("3. Register Student/Professor")
		r.printf("4. Register Guest Reviewer")
		r.printf("5. Password Recovery")
		r.printf("6. Exit")

		switch r.prompt("Select an option (1-6)") {
		case "1":
			r.login()
		case "2":
			r.reviewerLogin()
		case "3":
			r.register()
		case "4":
			r.registerGuestReviewer()
		case "5":
			r.passwordRecovery()
		case "6":
			r.printf("Goodbye!")
			return nil
		default:
			r.printf("Invalid option")
		}
	}
}

func (r *Runner) login() {
	role, ok := r.pickRole()
	if !ok {
		return
	}

	id := r.prompt("User ID")
	password := r.prompt("Password")

	storedRole, err := r.service.Directory.Authenticate(id, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(role), "failure").Inc()
		r.printf("Invalid user ID or password")
		return
	}
	metrics.LoginsTotal.WithLabelValues(string(storedRole), "success").Inc()

	token, err := r.service.Sessions.Create(context.Background(), storedRole, id)
	if err != nil {
		r.fail("Failed to open session", err)
		return
	}
	defer r.service.Sessions.Drop(context.Background(), token)

	session, err := r.service.Sessions.Resolve(context.Background(), token)
	if err != nil {
		r.fail("Failed to resolve session", err)
		return
	}

	r.printf("Login successful")
	switch session.Role {
	case models.RoleStudent:
		r.studentMenu(session.AccountID)
	case models.RoleProfessor:
		r.professorMenu(session.AccountID)
	case models.RoleGuestReviewer:
		r.reviewerMenu(session.AccountID)
	}
}

func (r *Runner) reviewerLogin() {
	r.printf("\nReviewer type:")
	r.printf("1. Internal Reviewer (professor account)")
	r.printf("2. Guest Reviewer")

	choice := r.prompt("Select (1/2)")
	var want models.Role
	switch choice {
	case "1":
		want = models.RoleProfessor
	case "2":
		want = models.RoleGuestReviewer
	default:
		r.printf("Invalid selection")
		return
	}

	id := r.prompt("Reviewer ID")
	password := r.prompt("Password")

	role, err := r.service.Directory.Authenticate(id, password)
	if err != nil || role != want {
		metrics.LoginsTotal.WithLabelValues(string(want), "failure").Inc()
		r.printf("Invalid reviewer ID or password")
		return
	}
	metrics.LoginsTotal.WithLabelValues(string(role), "success").Inc()

	token, err := r.service.Sessions.Create(context.Background(), role, id)
	if err != nil {
		r.fail("Failed to open session", err)
		return
	}
	defer r.service.Sessions.Drop(context.Background(), token)

	r.printf("Login successful")
	r.reviewerMenu(id)
}

func (r *Runner) register() {
	role, ok := r.pickRole()
	if !ok {
		return
	}

	input := directory.RegisterInput{
		ID:         r.prompt("User ID"),
		Name:       r.prompt("Full Name"),
		Password:   r.prompt("Password"),
		Role:       role,
		NationalID: r.prompt("National ID"),
	}
	if role == models.RoleStudent {
		input.Major = r.prompt("Major")
	}

	if err := r.service.Directory.Register(input); err != nil {
		r.fail("Registration failed", err)
		return
	}
	r.printf("Registration successful!")
}

func (r *Runner) registerGuestReviewer() {
	input := directory.RegisterInput{
		ID:          r.prompt("Reviewer ID"),
		Name:        r.prompt("Full Name"),
		Password:    r.prompt("Password"),
		Role:        models.RoleGuestReviewer,
		NationalID:  r.prompt("National ID"),
		Affiliation: r.prompt("Affiliation/Organization"),
	}

	if err := r.service.Directory.Register(input); err != nil {
		r.fail("Registration failed", err)
		return
	}
	r.printf("Guest reviewer registered successfully!")
}

func (r *Runner) passwordRecovery() {
	role, ok := r.pickRole()
	if !ok {
		return
	}
	nationalID := r.prompt("National ID")

	temp, err := r.service.Directory.ResetPassword(role, nationalID)
	if err != nil {
		r.fail("Password recovery failed", err)
		return
	}
	r.printf("Your temporary password: %s", temp)
	r.printf("Please change your password immediately after login")
}

func (r *Runner) changePassword(accountID string) {
	oldPwd := r.prompt("Current password")
	newPwd := r.prompt("New password")

	if err := r.service.Directory.ChangePassword(accountID, oldPwd, newPwd); err != nil {
		r.fail("Password change failed", err)
		return
	}
	r.printf("Password changed successfully!")
}

func (r *Runner) pickRole() (models.Role, bool) {
	r.printf("\nUser type:")
	r.printf("1. Student")
	r.printf("2. Professor")
	switch r.prompt("Select (1/2)") {
	case "1":
		return models.RoleStudent, true
	case "2":
		return models.RoleProfessor, true
	}
	r.printf("Invalid selection")
	return "", false
}

func (r *Runner) prompt(label string) string {
	fmt.Fprintf(r.out, "%s: ", label)
	if !r.in.Scan() {
		return ""
	}
	return strings.TrimSpace(r.in.Text())
}

// promptIndex asks for a 1-based selection into a list of n items.
// Returns -1 for cancel (0).
func (r *Runner) promptIndex(label string, n int) (int, error) {
	raw := r.prompt(label)
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: please enter a valid number", models.ErrValidation)
	}
	if value == 0 {
		return -1, nil
	}
	if value < 1 || value > n {
		return 0, fmt.Errorf("%w: selection out of range", models.ErrValidation)
	}
	return value - 1, nil
}

func (r *Runner) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *Runner) fail(what string, err error) {
	logger.Debug.Printf("%s: %v", what, err)
	r.printf("%s: %v", what, err)
}
