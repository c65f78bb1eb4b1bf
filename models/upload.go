package models

// Upload describes a stored file. URL is filled by the HTTP layer once the
// serving path is known.
type Upload struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}
