package event

import (
	"github.com/google/uuid"

	"restaurant-hub/internal/models"
)

// Message converts the event into its wire form. Items are copies taken at
// the time of the call.
func (e *Event) Message() *models.EventMessage {
	o := e.order
	items := o.Items()
	views := make([]models.ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, models.NewItemView(item))
	}

	return &models.EventMessage{
		ID:        uuid.NewString(),
		Kind:      string(e.kind),
		OrderID:   o.ID(),
		Table:     o.Table(),
		Origin:    e.origin,
		Excluded:  e.excluded,
		Target:    e.target,
		Info:      e.info,
		Total:     o.Total(),
		Items:     views,
		Timestamp: e.at,
	}
}
