package models

type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusCreated    OrderStatus = "created"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusFailed     OrderStatus = "failed"
	StatusCanceled   OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusCreated, StatusProcessing, StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition exists out of s.
func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusNew:        {StatusCreated, StatusProcessing, StatusCompleted, StatusFailed, StatusCanceled},
	StatusCreated:    {StatusProcessing, StatusCompleted, StatusFailed, StatusCanceled},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCanceled},
}

// CanTransition reports whether a manual status change from s to next is allowed.
// Terminal states have no outgoing transitions.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
