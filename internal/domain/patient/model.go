package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/record"
)

// Gender values accepted on registration.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"
)

var bloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// Address is persisted only when Street (the anchor field) is non-empty.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// EmergencyContact is persisted only when Name is non-empty.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// Insurance is persisted only when Provider is non-empty.
type Insurance struct {
	Provider     string `json:"provider"`
	PolicyNumber string `json:"policyNumber,omitempty"`
	ValidUntil   string `json:"validUntil,omitempty"`
}

// Patient maps to the patient table. NIC is unique; email and phone are
// unique when present.
type Patient struct {
	ID               uuid.UUID         `db:"id" json:"id"`
	FirstName        string            `db:"first_name" json:"firstName"`
	LastName         string            `db:"last_name" json:"lastName"`
	Phone            string            `db:"phone" json:"phone"`
	Email            *string           `db:"email" json:"email,omitempty"`
	Gender           string            `db:"gender" json:"gender"`
	DateOfBirth      string            `db:"date_of_birth" json:"dateOfBirth"`
	NIC              string            `db:"nic" json:"nic"`
	BloodGroup       *string           `db:"blood_group" json:"bloodGroup,omitempty"`
	HeightCM         record.Number     `db:"height_cm" json:"height"`
	WeightKG         record.Number     `db:"weight_kg" json:"weight"`
	Address          *Address          `db:"address" json:"address,omitempty"`
	EmergencyContact *EmergencyContact `db:"emergency_contact" json:"emergencyContact,omitempty"`
	Insurance        *Insurance        `db:"insurance" json:"insurance,omitempty"`
	Active           bool              `db:"active" json:"isActive"`
	CreatedBy        string            `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt        time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updatedAt"`
}

// Rules is the validation contract for patient drafts.
var Rules = record.RuleSet{
	Required: []string{"firstName", "lastName", "phone", "gender", "dateOfBirth", "nic"},
	Formats: record.FieldRules{
		"firstName":   {record.MaxLen(100)},
		"lastName":    {record.MaxLen(100)},
		"phone":       {record.Phone()},
		"email":       {record.Email()},
		"gender":      {record.OneOf(GenderMale, GenderFemale, GenderOther)},
		"dateOfBirth": {record.Date()},
		"nic":         {record.NIC()},
		"bloodGroup":  {record.OneOf(bloodGroups...)},
		"height":      {record.Range(30, 280)},
		"weight":      {record.Range(0.5, 500)},

		"emergencyContact.phone": {record.Phone()},
	},
}

// draft flattens the patient into the field map the rule set evaluates.
func (p *Patient) draft() map[string]string {
	d := map[string]string{
		"firstName":   p.FirstName,
		"lastName":    p.LastName,
		"phone":       p.Phone,
		"gender":      p.Gender,
		"dateOfBirth": p.DateOfBirth,
		"nic":         p.NIC,
		"height":      p.HeightCM.String(),
		"weight":      p.WeightKG.String(),
	}
	if p.Email != nil {
		d["email"] = *p.Email
	}
	if p.BloodGroup != nil {
		d["bloodGroup"] = *p.BloodGroup
	}
	if p.EmergencyContact != nil {
		d["emergencyContact.phone"] = p.EmergencyContact.Phone
	}
	return d
}

// normalize trims strings, uppercases enums, and drops nested objects whose
// anchor field is empty so the store never holds an object of blanks.
func (p *Patient) normalize() {
	trim := func(s string) string {
		t := record.TrimString(&s)
		if t == nil {
			return ""
		}
		return *t
	}
	p.FirstName = trim(p.FirstName)
	p.LastName = trim(p.LastName)
	p.Phone = trim(p.Phone)
	p.NIC = trim(p.NIC)
	p.Gender = upper(trim(p.Gender))
	p.DateOfBirth = trim(p.DateOfBirth)
	p.Email = record.TrimString(p.Email)
	if p.BloodGroup != nil {
		bg := upper(trim(*p.BloodGroup))
		if bg == "" {
			p.BloodGroup = nil
		} else {
			p.BloodGroup = &bg
		}
	}
	if p.Address != nil && !record.Anchored(&p.Address.Street) {
		p.Address = nil
	}
	if p.EmergencyContact != nil && !record.Anchored(&p.EmergencyContact.Name) {
		p.EmergencyContact = nil
	}
	if p.Insurance != nil && !record.Anchored(&p.Insurance.Provider) {
		p.Insurance = nil
	}
}

func upper(s string) string {
	return strings.ToUpper(s)
}
