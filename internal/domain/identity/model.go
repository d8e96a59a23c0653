package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is the lightweight account created from the landing form. A user may
// later register a full patient profile.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Patient maps to the patient table: the full registration profile captured
// by the onboarding form, owned by exactly one user.
type Patient struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	UserID                 uuid.UUID  `db:"user_id" json:"user_id"`
	Name                   string     `db:"name" json:"name"`
	Email                  string     `db:"email" json:"email"`
	Phone                  string     `db:"phone" json:"phone"`
	BirthDate              *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender                 *string    `db:"gender" json:"gender,omitempty"`
	Address                *string    `db:"address" json:"address,omitempty"`
	Occupation             *string    `db:"occupation" json:"occupation,omitempty"`
	EmergencyContactName   *string    `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactNumber *string    `db:"emergency_contact_number" json:"emergency_contact_number,omitempty"`
	PrimaryPhysician       *string    `db:"primary_physician" json:"primary_physician,omitempty"`
	InsuranceProvider      *string    `db:"insurance_provider" json:"insurance_provider,omitempty"`
	InsurancePolicyNumber  *string    `db:"insurance_policy_number" json:"insurance_policy_number,omitempty"`
	Allergies              *string    `db:"allergies" json:"allergies,omitempty"`
	CurrentMedication      *string    `db:"current_medication" json:"current_medication,omitempty"`
	FamilyMedicalHistory   *string    `db:"family_medical_history" json:"family_medical_history,omitempty"`
	PastMedicalHistory     *string    `db:"past_medical_history" json:"past_medical_history,omitempty"`
	IdentificationType     *string    `db:"identification_type" json:"identification_type,omitempty"`
	IdentificationNumber   *string    `db:"identification_number" json:"identification_number,omitempty"`
	IdentificationDocURL   *string    `db:"identification_doc_url" json:"identification_doc_url,omitempty"`
	PrivacyConsent         bool       `db:"privacy_consent" json:"privacy_consent"`
	TreatmentConsent       bool       `db:"treatment_consent" json:"treatment_consent"`
	DisclosureConsent      bool       `db:"disclosure_consent" json:"disclosure_consent"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}
