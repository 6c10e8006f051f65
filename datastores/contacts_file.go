package datastores

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/tidwall/jsonc"
)

// ContactsFile implements [ContactsStore] over a JSON file holding an array
// of contacts. Every operation reads the whole file and every mutation
// rewrites it.
type ContactsFile struct {
	mu   sync.Mutex
	path string
}

var _ ContactsStore = (*ContactsFile)(nil)

func NewContactsFile(path string) *ContactsFile {
	return &ContactsFile{path: path}
}

// Path returns the backing file path.
func (s *ContactsFile) Path() string { return s.path }

func (s *ContactsFile) List(_ context.Context) ([]*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *ContactsFile) Get(_ context.Context, id ContactID) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts, err := s.read()
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(contacts, func(c *Contact) bool { return c.ID == id })
	if i == -1 {
		return nil, ErrObjectNotFound
	}
	return contacts[i], nil
}

func (s *ContactsFile) Add(_ context.Context, c *Contact) (*Contact, error) {
	err := validateContact(c)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	contacts, err := s.read()
	if err != nil {
		return nil, err
	}
	id, err := nextID(contacts)
	if err != nil {
		return nil, err
	}
	c = c.clone()
	c.ID = id
	err = s.write(append(contacts, c))
	if err != nil {
		return nil, err
	}
	return c.clone(), nil
}

// Update replaces the contact having the same ID. It does nothing when there is none.
func (s *ContactsFile) Update(_ context.Context, c *Contact) error {
	err := validateUpdate(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	contacts, err := s.read()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(contacts, func(cc *Contact) bool { return cc.ID == c.ID })
	if i == -1 {
		return nil
	}
	contacts[i] = c.clone()
	return s.write(contacts)
}

func (s *ContactsFile) Delete(_ context.Context, id ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts, err := s.read()
	if err != nil {
		return err
	}
	return s.write(slices.DeleteFunc(contacts, func(c *Contact) bool { return c.ID == id }))
}

// read decodes the file; a missing or blank file holds no contacts.
// Comments and trailing commas are tolerated.
func (s *ContactsFile) read() ([]*Contact, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []*Contact{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}

	data = jsonc.ToJSON(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return []*Contact{}, nil
	}

	var contacts []*Contact
	err = json.Unmarshal(data, &contacts)
	if err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", s.path, err)
	}
	if contacts == nil {
		return []*Contact{}, nil
	}
	return slices.DeleteFunc(contacts, func(c *Contact) bool { return c == nil }), nil
}

// write replaces the file with an indented encoding of contacts. The data
// goes to a temporary file in the same directory which is then renamed over
// the original.
func (s *ContactsFile) write(contacts []*Contact) error {
	if contacts == nil {
		contacts = []*Contact{}
	}
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name()) //nolint: errcheck // gone after a successful rename

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if err == nil {
		err = tmp.Chmod(0o644) //nolint: mnd // rw-r--r--
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), s.path)
	}
	if err != nil {
		return fmt.Errorf("store: write %s: %w", s.path, err)
	}
	return nil
}
