package pharmacy

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/record"
)

// Contact is persisted only when Name (the anchor field) is non-empty.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Address is persisted only when Street is non-empty.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Pharmacy maps to the pharmacy table. LicenseNo is unique.
type Pharmacy struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	LicenseNo string    `db:"license_no" json:"licenseNumber"`
	Phone     string    `db:"phone" json:"phone"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Address   *Address  `db:"address" json:"address,omitempty"`
	Contact   *Contact  `db:"contact" json:"contact,omitempty"`
	Active    bool      `db:"active" json:"isActive"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

var Rules = record.RuleSet{
	Required: []string{"name", "licenseNumber", "phone"},
	Formats: record.FieldRules{
		"name":          {record.MaxLen(200)},
		"licenseNumber": {record.MaxLen(50)},
		"phone":         {record.Phone()},
		"email":         {record.Email()},
		"contact.phone": {record.Phone()},
		"contact.email": {record.Email()},
	},
}

func (p *Pharmacy) draft() map[string]string {
	d := map[string]string{
		"name":          p.Name,
		"licenseNumber": p.LicenseNo,
		"phone":         p.Phone,
	}
	if p.Email != nil {
		d["email"] = *p.Email
	}
	if p.Contact != nil {
		d["contact.phone"] = p.Contact.Phone
		d["contact.email"] = p.Contact.Email
	}
	return d
}

func (p *Pharmacy) normalize() {
	trim := func(s string) string {
		t := record.TrimString(&s)
		if t == nil {
			return ""
		}
		return *t
	}
	p.Name = trim(p.Name)
	p.LicenseNo = trim(p.LicenseNo)
	p.Phone = trim(p.Phone)
	p.Email = record.TrimString(p.Email)
	if p.Address != nil && !record.Anchored(&p.Address.Street) {
		p.Address = nil
	}
	if p.Contact != nil && !record.Anchored(&p.Contact.Name) {
		p.Contact = nil
	}
}
