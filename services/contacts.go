// Package services holds the business layer the HTTP handlers depend on.
package services

import (
	"context"

	ds "github.com/oaiiae/huma-contacts/datastores"
)

// ContactsService exposes the contacts operations with the contracts of [ds.ContactsStore].
type ContactsService interface {
	List(context.Context) ([]*ds.Contact, error)
	Get(context.Context, ds.ContactID) (*ds.Contact, error)
	Add(context.Context, *ds.Contact) (*ds.Contact, error)
	Update(context.Context, *ds.Contact) error
	Delete(context.Context, ds.ContactID) error
}

// Contacts implements [ContactsService] by delegating to a store.
type Contacts struct {
	Store ds.ContactsStore
}

var _ ContactsService = (*Contacts)(nil)

func NewContacts(store ds.ContactsStore) *Contacts { return &Contacts{Store: store} }

func (s *Contacts) List(ctx context.Context) ([]*ds.Contact, error) { return s.Store.List(ctx) }

func (s *Contacts) Get(ctx context.Context, id ds.ContactID) (*ds.Contact, error) {
	return s.Store.Get(ctx, id)
}

func (s *Contacts) Add(ctx context.Context, c *ds.Contact) (*ds.Contact, error) {
	return s.Store.Add(ctx, c)
}

func (s *Contacts) Update(ctx context.Context, c *ds.Contact) error { return s.Store.Update(ctx, c) }

func (s *Contacts) Delete(ctx context.Context, id ds.ContactID) error { return s.Store.Delete(ctx, id) }
