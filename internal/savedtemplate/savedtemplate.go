package savedtemplate

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("template not found")
	ErrInvalidName = errors.New("invalid template name")
)

// MaxNameLength is the longest accepted template name, in characters.
const MaxNameLength = 100

// Template is a named snapshot of a document owned by one user. The
// snapshot is kept encoded and only decoded when the template is loaded.
type Template struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	CreatedAt time.Time
	Snapshot  json.RawMessage
}
