package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	users    UserRepository
	patients PatientRepository
}

func NewService(users UserRepository, patients PatientRepository) *Service {
	return &Service{users: users, patients: patients}
}

// -- User --

// CreateUser creates an account from the landing form. When the email is
// already taken, the existing user is returned instead of an error, so a
// returning visitor lands on their own flow.
func (s *Service) CreateUser(ctx context.Context, u *User) (*User, error) {
	if u.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if u.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if u.Phone == "" {
		return nil, fmt.Errorf("phone is required")
	}

	existing, err := s.users.GetByEmail(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// -- Patient --

func (s *Service) RegisterPatient(ctx context.Context, p *Patient) error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !p.PrivacyConsent {
		return fmt.Errorf("privacy consent is required")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// GetPatientByUser returns nil, nil when the user has not registered yet.
func (s *Service) GetPatientByUser(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return s.patients.GetByUser(ctx, userID)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}
