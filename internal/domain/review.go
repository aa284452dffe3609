package domain

import "time"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
)

type Review struct {
	ID        int64        `db:"id" json:"id"`
	UserID    int64        `db:"user_id" json:"userId"`
	ProductID int64        `db:"product_id" json:"productId"`
	Rating    int32        `db:"rating" json:"rating"`
	Comment   string       `db:"comment" json:"comment"`
	Status    ReviewStatus `db:"status" json:"status"`
	UserName  string       `json:"userName,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
}

type ReviewInput struct {
	Rating  int32  `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}
