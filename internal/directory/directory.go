// Package directory resolves identity: registration, login, password
// lifecycle. It is the only package that touches credential hashes.
package directory

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/go-playground/validator/v10"

	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/store"
)

const tempPasswordLength = 8

// loginRoles is the scan order for authentication. There is no stored
// reviewer kind: internal reviewers log in with professor accounts.
var loginRoles = []models.Role{
	models.RoleStudent,
	models.RoleProfessor,
	models.RoleGuestReviewer,
}

type Service struct {
	stores *store.Stores
	hasher Hasher
}

func New(stores *store.Stores, hasher Hasher) *Service {
	return &Service{stores: stores, hasher: hasher}
}

type RegisterInput struct {
	ID          string      `validate:"required"`
	Name        string      `validate:"required"`
	Password    string      `validate:"required"`
	Role        models.Role `validate:"required,oneof=student professor guest_reviewer"`
	NationalID  string
	Major       string
	Affiliation string
}

// Register creates a new account. The id must be unused by any role; the
// national id must be unused within the same role only. A student and a
// professor sharing a national id is allowed.
func (s *Service) Register(input RegisterInput) error {
	if err := validator.New().Struct(input); err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	taken, err := s.idExists(input.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: account id %q", models.ErrAlreadyExists, input.ID)
	}

	if input.Role == models.RoleProfessor {
		input.Major = ""
	}

	col, err := s.stores.ByRole(input.Role)
	if err != nil {
		return err
	}
	accounts, err := col.Load()
	if err != nil {
		return err
	}

	if input.NationalID != "" {
		for _, a := range accounts {
			if a.NationalID == input.NationalID {
				return fmt.Errorf("%w: national id already registered as %s", models.ErrAlreadyExists, input.Role)
			}
		}
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return fmt.Errorf("failed to hash credential: %w", err)
	}

	accounts = append(accounts, models.Account{
		ID:             input.ID,
		Name:           input.Name,
		CredentialHash: digest,
		Role:           input.Role,
		NationalID:     input.NationalID,
		Major:          input.Major,
		Affiliation:    input.Affiliation,
	})
	return col.ReplaceAll(accounts)
}

// Authenticate scans all three directories for the id and checks the
// credential. Returns the stored role on success.
func (s *Service) Authenticate(id, password string) (models.Role, error) {
	for _, role := range loginRoles {
		col, err := s.stores.ByRole(role)
		if err != nil {
			return "", err
		}
		accounts, err := col.Load()
		if err != nil {
			return "", err
		}
		for _, a := range accounts {
			if a.ID == id {
				if s.hasher.Verify(password, a.CredentialHash) {
					return role, nil
				}
				return "", fmt.Errorf("%w: bad credentials", models.ErrUnauthorized)
			}
		}
	}
	return "", fmt.Errorf("%w: bad credentials", models.ErrUnauthorized)
}

// ResetPassword finds the first account of the role with a matching national
// id, overwrites its credential with a fresh temporary password, and returns
// the plaintext once. It is never persisted in plaintext.
func (s *Service) ResetPassword(role models.Role, nationalID string) (string, error) {
	col, err := s.stores.ByRole(role)
	if err != nil {
		return "", err
	}
	accounts, err := col.Load()
	if err != nil {
		return "", err
	}

	for i, a := range accounts {
		if a.NationalID != "" && a.NationalID == nationalID {
			temp, err := generateTempPassword(tempPasswordLength)
			if err != nil {
				return "", err
			}
			digest, err := s.hasher.Hash(temp)
			if err != nil {
				return "", fmt.Errorf("failed to hash credential: %w", err)
			}
			accounts[i].CredentialHash = digest
			if err := col.ReplaceAll(accounts); err != nil {
				return "", err
			}
			return temp, nil
		}
	}
	return "", fmt.Errorf("%w: no %s with that national id", models.ErrNotFound, role)
}

// ChangePassword verifies the current credential before replacing it.
func (s *Service) ChangePassword(id, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password must not be empty", models.ErrValidation)
	}
	for _, role := range loginRoles {
		col, err := s.stores.ByRole(role)
		if err != nil {
			return err
		}
		accounts, err := col.Load()
		if err != nil {
			return err
		}
		for i, a := range accounts {
			if a.ID != id {
				continue
			}
			if !s.hasher.Verify(oldPassword, a.CredentialHash) {
				return fmt.Errorf("%w: current password does not match", models.ErrUnauthorized)
			}
			digest, err := s.hasher.Hash(newPassword)
			if err != nil {
				return fmt.Errorf("failed to hash credential: %w", err)
			}
			accounts[i].CredentialHash = digest
			return col.ReplaceAll(accounts)
		}
	}
	return fmt.Errorf("%w: account %q", models.ErrNotFound, id)
}

// Get fetches one account from the given role's directory.
func (s *Service) Get(role models.Role, id string) (*models.Account, error) {
	col, err := s.stores.ByRole(role)
	if err != nil {
		return nil, err
	}
	accounts, err := col.Load()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", models.ErrNotFound, role, id)
}

// List returns every account of the given role.
func (s *Service) List(role models.Role) ([]models.Account, error) {
	col, err := s.stores.ByRole(role)
	if err != nil {
		return nil, err
	}
	return col.Load()
}

func (s *Service) idExists(id string) (bool, error) {
	for _, role := range loginRoles {
		col, err := s.stores.ByRole(role)
		if err != nil {
			return false, err
		}
		accounts, err := col.Load()
		if err != nil {
			return false, err
		}
		for _, a := range accounts {
			if a.ID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

const tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateTempPassword(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate temporary password: %w", err)
		}
		out[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}
