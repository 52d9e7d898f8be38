package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/telecare/telecare/internal/platform/auth"
)

type Service struct {
	patients  PatientRepository
	addresses AddressRepository
	jwtCfg    auth.JWTConfig
	tokenTTL  time.Duration
}

func NewService(patients PatientRepository, addresses AddressRepository, jwtCfg auth.JWTConfig) *Service {
	return &Service{patients: patients, addresses: addresses, jwtCfg: jwtCfg, tokenTTL: 24 * time.Hour}
}

// -- Accounts --

func (s *Service) Register(ctx context.Context, p *Patient, password string) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if p.PreferredLanguage == "" {
		p.PreferredLanguage = "en"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	p.PasswordHash = string(hash)
	p.Email = strings.ToLower(p.Email)

	return s.patients.Create(ctx, p)
}

// Login verifies credentials and issues a signed token for the patient role.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Patient, error) {
	p, err := s.patients.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	token, err := auth.IssueToken(s.jwtCfg, p.ID.String(), p.Name, []string{"patient"}, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, p, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) SearchPatients(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.Search(ctx, params, limit, offset)
}

// -- Addresses --

func (s *Service) AddAddress(ctx context.Context, a *Address) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.Line1 == "" {
		return fmt.Errorf("line1 is required")
	}
	if a.City == "" {
		return fmt.Errorf("city is required")
	}
	if a.PostalCode == "" {
		return fmt.Errorf("postal_code is required")
	}
	if a.Label == "" {
		a.Label = "home"
	}
	return s.addresses.Create(ctx, a)
}

func (s *Service) ListAddresses(ctx context.Context, patientID uuid.UUID) ([]*Address, error) {
	return s.addresses.ListByPatient(ctx, patientID)
}

func (s *Service) UpdateAddress(ctx context.Context, a *Address) error {
	if a.Line1 == "" {
		return fmt.Errorf("line1 is required")
	}
	return s.addresses.Update(ctx, a)
}

func (s *Service) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	return s.addresses.Delete(ctx, id)
}

func (s *Service) SetDefaultAddress(ctx context.Context, patientID, addressID uuid.UUID) error {
	return s.addresses.SetDefault(ctx, patientID, addressID)
}
