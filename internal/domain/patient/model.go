package patient

import (
	"time"

	"github.com/google/uuid"
)

// Owner is the client responsible for one or more pets.
type Owner struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Phone     string    `db:"phone" json:"phone"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (o *Owner) FullName() string {
	if o.LastName == "" {
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}

// Patient is an animal treated at the clinic.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	OwnerID     uuid.UUID  `db:"owner_id" json:"owner_id"`
	Name        string     `db:"name" json:"name"`
	Species     string     `db:"species" json:"species"`
	Breed       *string    `db:"breed" json:"breed,omitempty"`
	Sex         *string    `db:"sex" json:"sex,omitempty"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Summary is the pet and owner view shown next to a visit.
type Summary struct {
	PatientID  uuid.UUID `json:"patient_id"`
	Name       string    `json:"name"`
	Species    string    `json:"species"`
	Breed      string    `json:"breed,omitempty"`
	OwnerID    uuid.UUID `json:"owner_id"`
	OwnerName  string    `json:"owner_name"`
	OwnerPhone string    `json:"owner_phone"`
}

// Summarize joins a patient with its owner.
func Summarize(p *Patient, o *Owner) Summary {
	s := Summary{PatientID: p.ID, Name: p.Name, Species: p.Species, OwnerID: p.OwnerID}
	if p.Breed != nil {
		s.Breed = *p.Breed
	}
	if o != nil {
		s.OwnerName = o.FullName()
		s.OwnerPhone = o.Phone
	}
	return s
}
