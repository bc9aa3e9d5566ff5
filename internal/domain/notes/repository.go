package notes

import "context"

// Repository persists product notes per shop.
type Repository interface {
	ListNotes(ctx context.Context, shopID, productID string) ([]Note, error)
	CreateNote(ctx context.Context, shopID string, note Note) (Note, error)
}
