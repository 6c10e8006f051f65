package datastores

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestContactsFile(t *testing.T) {
	testContactsStore(t, func(t *testing.T) ContactsStore {
		return NewContactsFile(filepath.Join(t.TempDir(), "contacts.json"))
	})
}

func TestContactsFileMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.json")
	s := NewContactsFile(path)

	contacts, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(contacts) != 0 {
		t.Fatalf("List = %v, want empty", contacts)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("List created the file: %v", err)
	}
}

func TestContactsFileWritesIndentedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.json")
	s := NewContactsFile(path)

	_, err := s.Add(context.Background(), &Contact{Firstname: "A", Lastname: "B", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := `[
  {
    "id": 1,
    "firstname": "A",
    "lastname": "B",
    "email": "a@b.com"
  }
]
`
	if string(data) != want {
		t.Fatalf("file content:\n%s\nwant:\n%s", data, want)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o644 {
		t.Fatalf("file mode = %v, want %v", mode, os.FileMode(0o644))
	}

	err = s.Delete(context.Background(), 1)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "[]\n" {
		t.Fatalf("file content after delete = %q, want %q", data, "[]\n")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestContactsFileReadsLenientJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.json")
	err := os.WriteFile(path, []byte(`[
  // written by hand
  {"Id": 4, "Firstname": "john", "Lastname": "smith", "Email": "john@example.com"},
  null,
]`), 0o600)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s := NewContactsFile(path)

	got, err := s.Get(context.Background(), 4)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := Contact{ID: 4, Firstname: "john", Lastname: "smith", Email: "john@example.com"}
	if *got != want {
		t.Fatalf("Get = %+v, want %+v", *got, want)
	}

	added, err := s.Add(context.Background(), &Contact{Firstname: "A", Lastname: "B", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID != 5 {
		t.Fatalf("Add assigned id %d, want 5", added.ID)
	}
}

func TestContactsFileBlankFile(t *testing.T) {
	for _, content := range []string{"", "  \n", "null"} {
		path := filepath.Join(t.TempDir(), "contacts.json")
		err := os.WriteFile(path, []byte(content), 0o600)
		if err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		contacts, err := NewContactsFile(path).List(context.Background())
		if err != nil {
			t.Fatalf("List(%q): %v", content, err)
		}
		if len(contacts) != 0 {
			t.Fatalf("List(%q) = %v, want empty", content, contacts)
		}
	}
}

func TestContactsFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.json")
	err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0o600)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s := NewContactsFile(path)

	_, err = s.List(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("List err = %v, want a decode error", err)
	}
	_, err = s.Add(context.Background(), &Contact{Firstname: "A", Lastname: "B", Email: "a@b.com"})
	if err == nil {
		t.Fatal("Add succeeded over a malformed file")
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"not": "an array"}` {
		t.Fatalf("malformed file was overwritten: %s", data)
	}
}

func TestContactsFileConcurrentAdds(t *testing.T) {
	const n = 50
	path := filepath.Join(t.TempDir(), "contacts.json")
	s := NewContactsFile(path)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Add(context.Background(), &Contact{Firstname: "A", Lastname: "B", Email: "a@b.com"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	// a fresh store only sees what reached the file
	contacts, err := NewContactsFile(path).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(contacts) != n {
		t.Fatalf("listed %d contacts, want %d", len(contacts), n)
	}
	seen := make(map[ContactID]bool, n)
	for _, c := range contacts {
		if c.ID < 1 || c.ID > n || seen[c.ID] {
			t.Fatalf("unexpected or duplicate id %d in %v", c.ID, contacts)
		}
		seen[c.ID] = true
	}
}

func TestContactsFileIDsExhausted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.json")
	content := `[{"id": 9223372036854775807, "firstname": "A", "lastname": "B", "email": "a@b.com"}]`
	err := os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = NewContactsFile(path).Add(context.Background(), &Contact{Firstname: "C", Lastname: "D", Email: "c@d.com"})
	if !errors.Is(err, ErrIDsExhausted) {
		t.Fatalf("Add err = %v, want %v", err, ErrIDsExhausted)
	}
	data, _ := os.ReadFile(path)
	if string(data) != content {
		t.Fatalf("file changed: %s", data)
	}
}
