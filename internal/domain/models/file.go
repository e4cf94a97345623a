package models

import (
	"time"
)

// FileRecord is one row of the files metadata table.
// OwnerID and ObjectPath are fixed at creation.
type FileRecord struct {
	ID         string    `json:"id" db:"id"`
	OwnerID    ActorID   `json:"owner_id" db:"owner_id"`
	Name       string    `json:"name" db:"name"`
	Size       int64     `json:"size" db:"size"`
	MimeType   string    `json:"mime_type" db:"mime_type"`
	ObjectPath string    `json:"object_path" db:"object_path"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// FilePatch is a partial update to a FileRecord. Nil fields are left unchanged.
type FilePatch struct {
	OwnerID  *ActorID
	Name     *string
	MimeType *string
}

// ChangesOwner reports whether applying the patch would set the owner to something other than actor.
func (p *FilePatch) ChangesOwner(actor ActorID) bool {
	return p != nil && p.OwnerID != nil && *p.OwnerID != actor
}

// Apply copies the set fields of the patch onto rec. OwnerID is never copied.
func (p *FilePatch) Apply(rec *FileRecord) {
	if p == nil {
		return
	}
	if p.Name != nil {
		rec.Name = *p.Name
	}
	if p.MimeType != nil {
		rec.MimeType = *p.MimeType
	}
}
