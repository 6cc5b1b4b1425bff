package db

import "time"

// Loan 表示一次借阅记录。
type Loan struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	AccountID uint      `gorm:"column:account_id;index;not null" json:"account_id"`
	BookID    uint      `gorm:"column:book_id;index;not null" json:"book_id"`
	LoanedAt  time.Time `gorm:"column:loaned_at;not null" json:"loaned_at"`
	DueDate   time.Time `gorm:"column:due_date;not null" json:"due_date"`
	Returned  bool      `gorm:"column:returned;not null;default:false;index" json:"returned"`

	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Book    *Book    `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

// TableName 指定表名。
func (Loan) TableName() string {
	return "loans"
}
