// Package domain holds the catalog entities and their validation rules.
// Entities serialize to bson documents that omit the identity field until the
// storage layer has assigned one, and deserialize gracefully: a document
// missing required keys yields no entity rather than an error.
package domain

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Value bounds for user fields. Password bounds apply to the plaintext, which
// exists only transiently at creation time.
const (
	MinUsernameLen = 5
	MaxUsernameLen = 100
	MinPasswordLen = 5
	MaxPasswordLen = 100
)

// FieldID is the reserved document key for the storage-assigned identity.
const FieldID = "_id"

// User is a catalog user. Password always holds the opaque hash, never the
// plaintext.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Password string `json:"-"`
	Role     Role   `json:"user_role"`

	// plainPassword is set only when the user is constructed from caller
	// input; it never reaches storage or responses.
	plainPassword string
}

// NewUser constructs a not-yet-persisted user from a plaintext password and
// its hash. Role zero values default to RegularUser.
func NewUser(username, plainPassword, passwordHash string, role Role) *User {
	if !role.IsValid() {
		role = RoleRegularUser
	}
	return &User{
		Username:      username,
		Password:      passwordHash,
		Role:          role,
		plainPassword: plainPassword,
	}
}

// Validate reports whether the user satisfies the domain constraints.
// Malformed input is an anticipated case, so this is a predicate, not an
// error source.
func (u *User) Validate() bool {
	if len(u.Username) < MinUsernameLen || len(u.Username) > MaxUsernameLen {
		return false
	}
	if u.Password == "" {
		return false
	}
	if u.plainPassword != "" &&
		(len(u.plainPassword) < MinPasswordLen || len(u.plainPassword) > MaxPasswordLen) {
		return false
	}
	return u.Role.IsValid()
}

// Document returns the storage representation. The identity key is present
// only once the storage layer has assigned an id.
func (u *User) Document() bson.M {
	doc := bson.M{
		"username":  u.Username,
		"password":  u.Password,
		"user_role": int(u.Role),
	}
	if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
		doc[FieldID] = oid
	}
	return doc
}

// UserFromDocument rebuilds a user from a stored document. It returns nil
// when required keys are missing or mistyped.
func UserFromDocument(doc bson.M) *User {
	username, ok := docString(doc, "username")
	if !ok {
		return nil
	}
	password, ok := docString(doc, "password")
	if !ok {
		return nil
	}

	role := RoleRegularUser
	if v, ok := docInt(doc, "user_role"); ok {
		role = RoleFromValue(int(v))
	}

	return &User{
		ID:       docID(doc),
		Username: username,
		Password: password,
		Role:     role,
	}
}

// ValidPassword reports whether a plaintext password is within bounds.
func ValidPassword(plain string) bool {
	return len(plain) >= MinPasswordLen && len(plain) <= MaxPasswordLen
}

func docID(doc bson.M) string {
	switch v := doc[FieldID].(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return ""
	}
}

func docString(doc bson.M, key string) (string, bool) {
	v, ok := doc[key].(string)
	return v, ok
}

// docInt accepts the integer widths the bson decoder may produce.
func docInt(doc bson.M, key string) (int64, bool) {
	switch v := doc[key].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func docBool(doc bson.M, key string) (bool, bool) {
	v, ok := doc[key].(bool)
	return v, ok
}
