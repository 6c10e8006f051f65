package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/huma-contacts/datastores"
	"github.com/oaiiae/huma-contacts/services"
)

type Contacts struct {
	Service      services.ContactsService
	ErrorHandler func(context.Context, error)
	ErrorDetails bool // include internal error details in responses
}

type ContactModel struct {
	_  struct{}      `json:"-" additionalProperties:"true"` // unknown fields are ignored
	ID *ds.ContactID `json:"id,omitempty" example:"12" doc:"Assigned on creation, must match the path on update"`

	Firstname string `json:"firstname" minLength:"1" pattern:"\\S" example:"john"`
	Lastname  string `json:"lastname"  minLength:"1" pattern:"\\S" example:"smith"`
	Email     string `json:"email"     format:"email"              example:"john.smith@example.com"`
}

func newContactModel(c *ds.Contact) ContactModel {
	id := c.ID
	return ContactModel{
		ID:        &id,
		Firstname: c.Firstname,
		Lastname:  c.Lastname,
		Email:     c.Email,
	}
}

func (m *ContactModel) contact(id ds.ContactID) *ds.Contact {
	return &ds.Contact{
		ID:        id,
		Firstname: m.Firstname,
		Lastname:  m.Lastname,
		Email:     m.Email,
	}
}

func (h *Contacts) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "",
		handlerWithErrorHandler(h.list, h.ErrorDetails, h.ErrorHandler),
		opInfo("list-contacts", "List contacts"),
		opErrors(http.StatusInternalServerError),
	)
}

type ContactsListOutput struct {
	Body []ContactModel
}

func (h *Contacts) list(ctx context.Context, _ *struct{}) (*ContactsListOutput, error) {
	contacts, err := h.Service.List(ctx)
	if err != nil {
		return nil, err
	}

	body := make([]ContactModel, 0, len(contacts))
	for _, contact := range contacts {
		body = append(body, newContactModel(contact))
	}

	return &ContactsListOutput{Body: body}, nil
}

func (h *Contacts) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/{id}",
		handlerWithErrorHandler(h.get, h.ErrorDetails, h.ErrorHandler),
		opInfo("get-contact", "Get a contact"),
		opErrors(http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError),
	)
}

type ContactsGetOutput struct {
	Body ContactModel
}

func (h *Contacts) get(ctx context.Context, input *struct {
	ID ds.ContactID `path:"id" example:"12" doc:"ID of the contact to get"`
}) (*ContactsGetOutput, error) {
	contact, err := h.Service.Get(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("contact %d: %w", input.ID, err)
	}
	return &ContactsGetOutput{Body: newContactModel(contact)}, nil
}

func (h *Contacts) RegisterPost(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "",
		handlerWithErrorHandler(h.post, h.ErrorDetails, h.ErrorHandler),
		opInfo("create-contact", "Create a contact"),
		opStatus(http.StatusCreated),
		opErrors(http.StatusBadRequest, http.StatusInternalServerError),
	)
}

type ContactsPostInput struct {
	Body ContactModel

	path string
}

// Resolve keeps the request path to build the Location header.
func (i *ContactsPostInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.path = u.Path
	return nil
}

type ContactsPostOutput struct {
	Location string `header:"Location" doc:"URL of the created contact"`
	Body     ContactModel
}

func (h *Contacts) post(ctx context.Context, input *ContactsPostInput) (*ContactsPostOutput, error) {
	contact, err := h.Service.Add(ctx, input.Body.contact(0))
	if err != nil {
		return nil, err
	}
	return &ContactsPostOutput{
		Location: strings.TrimSuffix(input.path, "/") + "/" + strconv.Itoa(contact.ID),
		Body:     newContactModel(contact),
	}, nil
}

func (h *Contacts) RegisterPut(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/{id}",
		handlerWithErrorHandler(h.put, h.ErrorDetails, h.ErrorHandler),
		opInfo("update-contact", "Replace a contact"),
		opErrors(http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError),
	)
}

type ContactsPutOutput struct {
	Body ContactModel
}

func (h *Contacts) put(ctx context.Context, input *struct {
	ID   ds.ContactID `path:"id" example:"12" doc:"ID of the contact to replace"`
	Body ContactModel
}) (*ContactsPutOutput, error) {
	if input.Body.ID == nil {
		return nil, fmt.Errorf("%w: path has %d, body has none", ErrIDMismatch, input.ID)
	}
	if *input.Body.ID != input.ID {
		return nil, fmt.Errorf("%w: path has %d, body has %d", ErrIDMismatch, input.ID, *input.Body.ID)
	}

	// the store ignores updates of unknown contacts, report them instead
	_, err := h.Service.Get(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("contact %d: %w", input.ID, err)
	}

	contact := input.Body.contact(input.ID)
	err = h.Service.Update(ctx, contact)
	if err != nil {
		return nil, err
	}
	return &ContactsPutOutput{Body: newContactModel(contact)}, nil
}

func (h *Contacts) RegisterDel(api huma.API) { // called by [huma.AutoRegister]
	huma.Delete(api, "/{id}",
		handlerWithErrorHandler(h.del, h.ErrorDetails, h.ErrorHandler),
		opInfo("delete-contact", "Delete a contact"),
		opErrors(http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError),
	)
}

func (h *Contacts) del(ctx context.Context, input *struct {
	ID ds.ContactID `path:"id" example:"12" doc:"ID of the contact to delete"`
}) (*struct{}, error) {
	_, err := h.Service.Get(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("contact %d: %w", input.ID, err)
	}
	return nil, h.Service.Delete(ctx, input.ID)
}
