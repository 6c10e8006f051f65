package datastores

import (
	"context"
	"slices"
	"sync"
)

// ContactsInmem implements [ContactsStore] in memory.
type ContactsInmem struct {
	mu       sync.Mutex
	contacts []*Contact
}

var _ ContactsStore = (*ContactsInmem)(nil)

// NewContactsInmem returns a store seeded with cs, assigning IDs in order.
func NewContactsInmem(cs ...*Contact) *ContactsInmem {
	s := &ContactsInmem{contacts: make([]*Contact, 0, len(cs))}
	for i, c := range cs {
		c = c.clone()
		c.ID = i + 1
		s.contacts = append(s.contacts, c)
	}
	return s
}

func (s *ContactsInmem) List(_ context.Context) ([]*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clones(s.contacts), nil
}

func (s *ContactsInmem) Get(_ context.Context, id ContactID) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.contacts, func(c *Contact) bool { return c.ID == id })
	if i == -1 {
		return nil, ErrObjectNotFound
	}
	return s.contacts[i].clone(), nil
}

func (s *ContactsInmem) Add(_ context.Context, c *Contact) (*Contact, error) {
	err := validateContact(c)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := nextID(s.contacts)
	if err != nil {
		return nil, err
	}
	c = c.clone()
	c.ID = id
	s.contacts = append(s.contacts, c)
	return c.clone(), nil
}

func (s *ContactsInmem) Update(_ context.Context, c *Contact) error {
	err := validateUpdate(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.contacts, func(cc *Contact) bool { return cc.ID == c.ID })
	if i != -1 {
		s.contacts[i] = c.clone()
	}
	return nil
}

func (s *ContactsInmem) Delete(_ context.Context, id ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = slices.DeleteFunc(s.contacts, func(c *Contact) bool { return c.ID == id })
	return nil
}
