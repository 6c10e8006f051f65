package datastores

import (
	"context"
	"errors"
	"math"
)

type (
	ContactID = int
	Contact   struct {
		ID        ContactID `json:"id"`
		Firstname string    `json:"firstname" validate:"required,notblank"`
		Lastname  string    `json:"lastname"  validate:"required,notblank"`
		Email     string    `json:"email"     validate:"required,email"`
	}
)

// ContactsStore is implemented by every contacts backend.
// Returned contacts are copies owned by the caller.
type ContactsStore interface {
	List(context.Context) ([]*Contact, error)
	Get(context.Context, ContactID) (*Contact, error)
	Add(context.Context, *Contact) (*Contact, error)
	Update(context.Context, *Contact) error
	Delete(context.Context, ContactID) error
}

var (
	ErrObjectNotFound = errors.New("store: object not found")
	ErrInvalidObject  = errors.New("store: invalid object")
	ErrIDsExhausted   = errors.New("store: no id left after the highest one")
)

func (c *Contact) clone() *Contact { cc := *c; return &cc }

// nextID returns the ID following the highest one in use.
func nextID(contacts []*Contact) (ContactID, error) {
	var id ContactID
	for _, c := range contacts {
		id = max(id, c.ID)
	}
	if id == math.MaxInt {
		return 0, ErrIDsExhausted
	}
	return id + 1, nil
}

func clones(contacts []*Contact) []*Contact {
	cs := make([]*Contact, 0, len(contacts))
	for _, c := range contacts {
		cs = append(cs, c.clone())
	}
	return cs
}
