package notes

import "time"

// Note is a merchant-authored remark pinned to a product.
type Note struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Text      string    `json:"noteText"`
	Tags      []string  `json:"tags"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// AddRequest creates a note for a product.
type AddRequest struct {
	ShopID    string   `json:"-"`
	ProductID string   `json:"productId"`
	NoteText  string   `json:"noteText"`
	Tags      []string `json:"tags"`
	Author    string   `json:"author"`
}
