/*
Package book defines the book search data shared by the state store, the search
collaborator and the user directory.

Field names follow the Open Library search document so results can be stored
and persisted without translation.
*/
package book

import "time"

// Book is a single search result. Key is its identity; the other fields are descriptive.
type Book struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	CoverID          int      `json:"cover_i,omitempty"`
	ISBN             []string `json:"isbn,omitempty"`
	Publisher        []string `json:"publisher,omitempty"`
	EditionCount     int      `json:"edition_count,omitempty"`
}

// SearchType selects the Open Library field a query is matched against.
type SearchType string

const (
	SearchGeneral SearchType = "general"
	SearchTitle   SearchType = "title"
	SearchAuthor  SearchType = "author"
	SearchSubject SearchType = "subject"
	SearchISBN    SearchType = "isbn"
)

// Valid reports whether t is one of the known search types.
func (t SearchType) Valid() bool {
	switch t {
	case SearchGeneral, SearchTitle, SearchAuthor, SearchSubject, SearchISBN:
		return true
	}
	return false
}

// SearchParams describes the query that produced the current result list.
type SearchParams struct {
	Query      string     `json:"query"`
	SearchType SearchType `json:"searchType"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

// HistoryEntry records a search the user ran.
type HistoryEntry struct {
	Query       string     `json:"query"`
	SearchType  SearchType `json:"searchType"`
	Timestamp   time.Time  `json:"timestamp"`
	ResultCount int        `json:"resultCount"`
}

// IndexOf returns the position of the book with key in books, or -1.
func IndexOf(books []Book, key string) int {
	for i, b := range books {
		if b.Key == key {
			return i
		}
	}
	return -1
}
