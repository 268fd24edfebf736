package domain

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Value bounds for song fields. MaxSongIDLen is the hex length of a storage
// object id.
const (
	MinSongNameLen = 5
	MaxSongNameLen = 100
	MinURLLen      = 3
	MaxURLLen      = 100
	MaxSongIDLen   = 24
)

// Counter document keys, used by the atomic increment operations.
const (
	FieldNumLikes    = "num_likes"
	FieldTimesPlayed = "times_played"
)

// Song is a catalog entry. The (Name, SourceURL) pair is unique across the
// collection; the counters only ever move up, via atomic increments.
type Song struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	CoverURL    string `json:"cover_url"`
	SourceURL   string `json:"source_url"`
	IsExplicit  bool   `json:"is_explicit"`
	TimesPlayed int64  `json:"times_played"`
	NumLikes    int64  `json:"num_likes"`
}

// NewSong constructs a not-yet-persisted song with zeroed counters.
func NewSong(name, coverURL, sourceURL string, isExplicit bool) *Song {
	return &Song{
		Name:       name,
		CoverURL:   coverURL,
		SourceURL:  sourceURL,
		IsExplicit: isExplicit,
	}
}

// Validate reports whether the song satisfies the domain constraints.
func (s *Song) Validate() bool {
	if len(s.Name) < MinSongNameLen || len(s.Name) > MaxSongNameLen {
		return false
	}
	if len(s.CoverURL) < MinURLLen || len(s.CoverURL) > MaxURLLen {
		return false
	}
	if len(s.SourceURL) < MinURLLen || len(s.SourceURL) > MaxURLLen {
		return false
	}
	return s.TimesPlayed >= 0 && s.NumLikes >= 0
}

// Document returns the storage representation, omitting the identity key
// until the storage layer has assigned one.
func (s *Song) Document() bson.M {
	doc := bson.M{
		"name":         s.Name,
		"cover_url":    s.CoverURL,
		"source_url":   s.SourceURL,
		"is_explicit":  s.IsExplicit,
		"times_played": s.TimesPlayed,
		"num_likes":    s.NumLikes,
	}
	if oid, err := primitive.ObjectIDFromHex(s.ID); err == nil {
		doc[FieldID] = oid
	}
	return doc
}

// SongFromDocument rebuilds a song from a stored document. It returns nil
// when required keys are missing or mistyped; the flag and counter fields
// fall back to their defaults.
func SongFromDocument(doc bson.M) *Song {
	name, ok := docString(doc, "name")
	if !ok {
		return nil
	}
	coverURL, ok := docString(doc, "cover_url")
	if !ok {
		return nil
	}
	sourceURL, ok := docString(doc, "source_url")
	if !ok {
		return nil
	}

	song := &Song{
		ID:        docID(doc),
		Name:      name,
		CoverURL:  coverURL,
		SourceURL: sourceURL,
	}
	if v, ok := docBool(doc, "is_explicit"); ok {
		song.IsExplicit = v
	}
	if v, ok := docInt(doc, FieldTimesPlayed); ok {
		song.TimesPlayed = v
	}
	if v, ok := docInt(doc, FieldNumLikes); ok {
		song.NumLikes = v
	}
	return song
}
