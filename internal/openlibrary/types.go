package openlibrary

// NamedRef is a named entry in one of the edition's list fields. The books
// API wraps every contributor-like value in an object with a "name" key
// (authors additionally carry a "url", which we ignore).
type NamedRef struct {
	Name string `json:"name"`
}

// Cover holds the size-keyed cover image URLs for an edition.
type Cover struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// Edition is the subset of the Open Library books API response this
// application consumes. Every field is optional except the title; absent
// list fields decode as nil slices and are treated as empty.
type Edition struct {
	Key           string     `json:"key"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	NumberOfPages int        `json:"number_of_pages"`
	PublishDate   string     `json:"publish_date"`
	Cover         *Cover     `json:"cover"`
	Authors       []NamedRef `json:"authors"`
	Publishers    []NamedRef `json:"publishers"`
	Subjects      []NamedRef `json:"subjects"`
	SubjectPlaces []NamedRef `json:"subject_places"`
	SubjectPeople []NamedRef `json:"subject_people"`
	SubjectTimes  []NamedRef `json:"subject_times"`
}
