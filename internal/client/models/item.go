package models

import "time"

// ItemType classifies a vault item.
type ItemType string

const (
	ItemLogin ItemType = "login"
	ItemNote  ItemType = "note"
	ItemCard  ItemType = "card"
)

// VaultItem is a stored secret as it crosses the client boundary: the title
// stays readable for list rendering, Secret is a cipher envelope produced by
// cryptox.FieldCipher. The backend and the local cache only ever see the
// envelope.
type VaultItem struct {
	ID        string    `json:"id"`
	Type      ItemType  `json:"type"`
	Title     string    `json:"title"`
	Secret    string    `json:"secret"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginSecret is the plaintext shape of an ItemLogin secret.
type LoginSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url,omitempty"`
}

// NoteSecret is the plaintext shape of an ItemNote secret.
type NoteSecret struct {
	Text string `json:"text"`
}

// CardSecret is the plaintext shape of an ItemCard secret.
type CardSecret struct {
	Number string `json:"number"`
	Holder string `json:"holder"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}
