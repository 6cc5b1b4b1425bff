package dto

// BookCreateRequest is the payload for adding a book to the inventory.
type BookCreateRequest struct {
	Title    string `json:"title" binding:"required,min=3"`
	Author   string `json:"author" binding:"required,min=3"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// BookUpdateRequest replaces a book's attributes.
type BookUpdateRequest struct {
	Title    string `json:"title" binding:"required,min=3"`
	Author   string `json:"author" binding:"required,min=3"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}
