package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"libris/internal/config"
)

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		OpenLibraryBaseURL: srv.URL,
		OpenLibraryTimeout: 2 * time.Second,
	}
	return NewFetcher(cfg, zap.NewNop())
}

func TestLookupParsesEdition(t *testing.T) {
	body := `{
		"ISBN:0060935464": {
			"key": "/books/OL7282608M",
			"title": "To Kill a Mockingbird",
			"url": "https://openlibrary.org/books/OL7282608M/To_Kill_a_Mockingbird",
			"number_of_pages": 384,
			"publish_date": "May 23, 2006",
			"cover": {
				"small": "https://covers.openlibrary.org/b/id/12606502-S.jpg",
				"medium": "https://covers.openlibrary.org/b/id/12606502-M.jpg",
				"large": "https://covers.openlibrary.org/b/id/12606502-L.jpg"
			},
			"authors": [{"name": "Harper Lee", "url": "https://openlibrary.org/authors/OL498120A"}],
			"publishers": [{"name": "Harper Perennial Modern Classics"}],
			"subjects": [{"name": "Fiction"}, {"name": "Race relations"}],
			"subject_places": [{"name": "Alabama"}],
			"subject_people": [{"name": "Atticus Finch"}],
			"subject_times": [{"name": "1930s"}]
		}
	}`

	var gotPath string
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("bibkeys") != "ISBN:0060935464" {
			t.Errorf("unexpected bibkeys query: %q", r.URL.Query().Get("bibkeys"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})

	edition, err := f.Lookup(context.Background(), "0060935464")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if gotPath != "/api/books" {
		t.Errorf("request path = %q, want /api/books", gotPath)
	}
	if edition.Title != "To Kill a Mockingbird" {
		t.Errorf("title = %q", edition.Title)
	}
	if edition.NumberOfPages != 384 {
		t.Errorf("number_of_pages = %d", edition.NumberOfPages)
	}
	if len(edition.Authors) != 1 || edition.Authors[0].Name != "Harper Lee" {
		t.Errorf("authors = %+v", edition.Authors)
	}
	if edition.Cover == nil || edition.Cover.Medium == "" {
		t.Errorf("cover = %+v", edition.Cover)
	}
	if len(edition.Subjects) != 2 {
		t.Errorf("subjects = %+v", edition.Subjects)
	}
}

func TestLookupUnknownISBNReturnsNotFound(t *testing.T) {
	// Open Library answers 200 with an empty object for unknown ISBNs.
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := f.Lookup(context.Background(), "1111111111111")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookupClientErrorReturnsNotFound(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := f.Lookup(context.Background(), "0060935464")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookupServerErrorReturnsServiceUnavailable(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := f.Lookup(context.Background(), "0060935464")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestLookupTransportFailureReturnsServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	cfg := &config.Config{
		OpenLibraryBaseURL: srv.URL,
		OpenLibraryTimeout: time.Second,
	}
	f := NewFetcher(cfg, zap.NewNop())

	_, err := f.Lookup(context.Background(), "0060935464")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestLookupMalformedResponseReturnsServiceUnavailable(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := f.Lookup(context.Background(), "0060935464")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}
