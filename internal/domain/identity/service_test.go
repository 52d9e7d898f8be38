package identity

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/telecare/telecare/internal/platform/auth"
)

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	for _, existing := range m.patients {
		if existing.Email == p.Email {
			return fmt.Errorf("email already registered")
		}
	}
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockPatientRepo) GetByEmail(_ context.Context, email string) (*Patient, error) {
	for _, p := range m.patients {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.patients {
		items = append(items, p)
	}
	return items, len(items), nil
}

func (m *mockPatientRepo) Search(_ context.Context, _ map[string]string, limit, offset int) ([]*Patient, int, error) {
	return m.List(nil, limit, offset)
}

type mockAddressRepo struct {
	addresses map[uuid.UUID]*Address
}

func newMockAddressRepo() *mockAddressRepo {
	return &mockAddressRepo{addresses: make(map[uuid.UUID]*Address)}
}

func (m *mockAddressRepo) Create(_ context.Context, a *Address) error {
	a.ID = uuid.New()
	m.addresses[a.ID] = a
	return nil
}

func (m *mockAddressRepo) GetByID(_ context.Context, id uuid.UUID) (*Address, error) {
	a, ok := m.addresses[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return a, nil
}

func (m *mockAddressRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Address, error) {
	var items []*Address
	for _, a := range m.addresses {
		if a.PatientID == patientID {
			items = append(items, a)
		}
	}
	return items, nil
}

func (m *mockAddressRepo) Update(_ context.Context, a *Address) error {
	m.addresses[a.ID] = a
	return nil
}

func (m *mockAddressRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.addresses, id)
	return nil
}

func (m *mockAddressRepo) SetDefault(_ context.Context, patientID, addressID uuid.UUID) error {
	target, ok := m.addresses[addressID]
	if !ok || target.PatientID != patientID {
		return fmt.Errorf("address not found")
	}
	for _, a := range m.addresses {
		if a.PatientID == patientID {
			a.IsDefault = a.ID == addressID
		}
	}
	return nil
}

var testJWTCfg = auth.JWTConfig{SigningKey: []byte("test-key"), Issuer: "telecare"}

func newTestService() *Service {
	return NewService(newMockPatientRepo(), newMockAddressRepo(), testJWTCfg)
}

func TestRegister(t *testing.T) {
	svc := newTestService()
	p := &Patient{Name: "Asha Verma", Email: "Asha@Example.com"}

	if err := svc.Register(context.Background(), p, "secret-pass"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected id assigned")
	}
	if p.Email != "asha@example.com" {
		t.Errorf("expected email lower-cased, got %q", p.Email)
	}
	if p.PasswordHash == "" || p.PasswordHash == "secret-pass" {
		t.Error("expected password hashed")
	}
	if p.PreferredLanguage != "en" {
		t.Errorf("expected default language en, got %q", p.PreferredLanguage)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService()

	if err := svc.Register(context.Background(), &Patient{Email: "a@b.c"}, "secret-pass"); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Register(context.Background(), &Patient{Name: "A", Email: "not-an-email"}, "secret-pass"); err == nil {
		t.Error("expected error for invalid email")
	}
	if err := svc.Register(context.Background(), &Patient{Name: "A", Email: "a@b.c"}, "short"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	p := &Patient{Name: "Asha", Email: "asha@example.com"}
	if err := svc.Register(context.Background(), p, "secret-pass"); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, got, err := svc.Login(context.Background(), "asha@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if got.ID != p.ID {
		t.Errorf("expected patient %s, got %s", p.ID, got.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService()
	p := &Patient{Name: "Asha", Email: "asha@example.com"}
	if err := svc.Register(context.Background(), p, "secret-pass"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "asha@example.com", "wrong"); err == nil {
		t.Error("expected error for wrong password")
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "secret-pass"); err == nil {
		t.Error("expected error for unknown email")
	}
}

func TestAddAddress(t *testing.T) {
	svc := newTestService()
	pid := uuid.New()
	a := &Address{PatientID: pid, Line1: "12 MG Road", City: "Pune", State: "MH", PostalCode: "411001"}

	if err := svc.AddAddress(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Label != "home" {
		t.Errorf("expected default label home, got %q", a.Label)
	}

	items, err := svc.ListAddresses(context.Background(), pid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected one address, got %d", len(items))
	}
}

func TestAddAddress_Validation(t *testing.T) {
	svc := newTestService()

	if err := svc.AddAddress(context.Background(), &Address{Line1: "x", City: "y", PostalCode: "z"}); err == nil {
		t.Error("expected error for missing patient_id")
	}
	if err := svc.AddAddress(context.Background(), &Address{PatientID: uuid.New(), City: "y", PostalCode: "z"}); err == nil {
		t.Error("expected error for missing line1")
	}
}

func TestSetDefaultAddress(t *testing.T) {
	svc := newTestService()
	pid := uuid.New()
	a := &Address{PatientID: pid, Line1: "12 MG Road", City: "Pune", State: "MH", PostalCode: "411001"}
	b := &Address{PatientID: pid, Line1: "4 FC Road", City: "Pune", State: "MH", PostalCode: "411004"}
	svc.AddAddress(context.Background(), a)
	svc.AddAddress(context.Background(), b)

	if err := svc.SetDefaultAddress(context.Background(), pid, b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, _ := svc.ListAddresses(context.Background(), pid)
	for _, addr := range items {
		if addr.ID == b.ID && !addr.IsDefault {
			t.Error("expected b default")
		}
		if addr.ID == a.ID && addr.IsDefault {
			t.Error("expected a no longer default")
		}
	}
}
