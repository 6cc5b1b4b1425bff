package db

import "time"

// Book 表示馆藏图书。
type Book struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Title     string     `gorm:"column:title;type:varchar(255);index;not null" json:"title"`
	Author    string     `gorm:"column:author;type:varchar(255);not null" json:"author"`
	Quantity  int        `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Deleted   bool       `gorm:"column:deleted;not null;default:false;index" json:"deleted"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName 指定表名。
func (Book) TableName() string {
	return "books"
}
