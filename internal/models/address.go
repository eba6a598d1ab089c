package models

import "time"

// DeliveryAddress : une seule par utilisateur, modifiée sur place (pas de versions).
type DeliveryAddress struct {
	ID         string    `json:"_id"`
	UserID     string    `json:"user"`
	Mob1       string    `json:"mob1"`
	Mob2       string    `json:"mob2,omitempty"`
	PostalCode string    `json:"postalcode"`
	Address    string    `json:"address"`
	Area       string    `json:"area"`
	Landmark   string    `json:"landmark"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AddressPatch porte les champs optionnels d'une mise à jour partielle.
type AddressPatch struct {
	Mob1       *string
	Mob2       *string
	PostalCode *string
	Address    *string
	Area       *string
	Landmark   *string
	City       *string
	State      *string
}

func (a *DeliveryAddress) Apply(p AddressPatch) {
	set := func(dst *string, v *string) {
		if v != nil && *v != "" {
			*dst = *v
		}
	}
	set(&a.Mob1, p.Mob1)
	set(&a.Mob2, p.Mob2)
	set(&a.PostalCode, p.PostalCode)
	set(&a.Address, p.Address)
	set(&a.Area, p.Area)
	set(&a.Landmark, p.Landmark)
	set(&a.City, p.City)
	set(&a.State, p.State)
}
