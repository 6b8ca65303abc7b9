package wizard

import (
	"fmt"
	"time"

	"github.com/sellerdesk/onboard/internal/config"
	"github.com/sellerdesk/onboard/internal/model"
)

// allowedDocumentTypes are the MIME types accepted for any document slot.
var allowedDocumentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// imageTypes are the subset accepted for the selfie slot.
var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Intake collects the three required verification documents. Re-selecting a
// slot replaces its previous entry; removal is unconditional.
type Intake struct {
	files map[model.DocumentSlot]*model.UploadedFile
}

// NewIntake returns an intake with all slots empty.
func NewIntake() *Intake {
	return &Intake{files: make(map[model.DocumentSlot]*model.UploadedFile)}
}

// Accept validates and stores a user-selected file into a slot. It rejects
// unknown slots, disallowed MIME types, files over the size limit and
// non-image selfies, returning a FileIntakeError with the offending slot.
func (in *Intake) Accept(slot model.DocumentSlot, filename, contentType string, content []byte) (*model.UploadedFile, error) {
	if !slot.IsValid() {
		return nil, &FileIntakeError{Slot: string(slot), Message: "unknown document slot"}
	}
	if !allowedDocumentTypes[contentType] {
		return nil, &FileIntakeError{
			Slot:    string(slot),
			Message: fmt.Sprintf("file type %s is not allowed; use JPEG, PNG, WebP or PDF", contentType),
		}
	}
	if slot == model.SlotSelfieWithID && !imageTypes[contentType] {
		return nil, &FileIntakeError{Slot: string(slot), Message: "selfie must be an image"}
	}
	if int64(len(content)) > config.MaxDocumentBytes {
		return nil, &FileIntakeError{Slot: string(slot), Message: "file exceeds the 5MB limit"}
	}

	entry := &model.UploadedFile{
		Slot:        slot,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(content)),
		CapturedAt:  time.Now().UTC(),
		Content:     content,
	}
	in.files[slot] = entry
	return entry, nil
}

// Restore places a previously persisted entry back into its slot without
// re-running intake checks.
func (in *Intake) Restore(entry *model.UploadedFile) {
	if entry != nil && entry.Slot.IsValid() {
		in.files[entry.Slot] = entry
	}
}

// Remove clears a slot unconditionally.
func (in *Intake) Remove(slot model.DocumentSlot) {
	delete(in.files, slot)
}

// Get returns the entry for a slot, or nil when empty.
func (in *Intake) Get(slot model.DocumentSlot) *model.UploadedFile {
	return in.files[slot]
}

// Files returns a copy of the slot map.
func (in *Intake) Files() map[model.DocumentSlot]*model.UploadedFile {
	out := make(map[model.DocumentSlot]*model.UploadedFile, len(in.files))
	for slot, f := range in.files {
		out[slot] = f
	}
	return out
}

// Complete reports whether all three required slots are filled.
func (in *Intake) Complete() bool {
	for _, slot := range model.DocumentSlots() {
		if in.files[slot] == nil {
			return false
		}
	}
	return true
}

// MissingSlots returns field-specific errors for every empty slot. Used by the
// submission orchestrator to fail before any network call.
func (in *Intake) MissingSlots() ErrorMap {
	errs := ErrorMap{}
	for _, slot := range model.DocumentSlots() {
		if in.files[slot] == nil {
			errs[string(slot)] = slotMissingMessage(slot)
		}
	}
	return errs
}
