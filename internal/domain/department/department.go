package department

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Department owns zero or more doctors. Immutable once created, there are no
// update or delete operations on it.
type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("department not found")

type CreateRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

func NewFromCreateRequest(req CreateRequest) Department {
	return Department{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
}
