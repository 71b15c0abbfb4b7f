package domain

// Slot names one of the four document categories a farmer can attach.
type Slot string

const (
	SlotProfilePic Slot = "profilePic"
	SlotAadhar     Slot = "aadhar"
	SlotLand       Slot = "land"
	SlotBank       Slot = "bank"
)

// Slots returns all document slots in their canonical order.
func Slots() []Slot {
	return []Slot{SlotProfilePic, SlotAadhar, SlotLand, SlotBank}
}

// Category is the blob-store prefix objects for this slot are written under.
func (s Slot) Category() string {
	if s == SlotProfilePic {
		return "profile-pics"
	}
	return string(s)
}

// DocumentSet holds one optional value per slot. The write pipeline uses it
// twice: T = multipart.FileHeader for the parsed request and T = string for
// the uploaded storage paths, so both shapes share one definition.
type DocumentSet[T any] struct {
	ProfilePic *T
	Aadhar     *T
	Land       *T
	Bank       *T
}

func (d *DocumentSet[T]) Get(s Slot) *T {
	switch s {
	case SlotProfilePic:
		return d.ProfilePic
	case SlotAadhar:
		return d.Aadhar
	case SlotLand:
		return d.Land
	case SlotBank:
		return d.Bank
	}
	return nil
}

func (d *DocumentSet[T]) Set(s Slot, v *T) {
	switch s {
	case SlotProfilePic:
		d.ProfilePic = v
	case SlotAadhar:
		d.Aadhar = v
	case SlotLand:
		d.Land = v
	case SlotBank:
		d.Bank = v
	}
}

// Len counts the slots that carry a value.
func (d *DocumentSet[T]) Len() int {
	n := 0
	for _, s := range Slots() {
		if d.Get(s) != nil {
			n++
		}
	}
	return n
}
