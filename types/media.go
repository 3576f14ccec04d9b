package types

// MediaType identifies a kind of media item in the upstream catalog.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether t is a media type that can be favorited or reviewed.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

func (t MediaType) String() string {
	return string(t)
}
