package services

import "github.com/vpoint-tv/vpoint-api/model"

// Actor identifies the operator performing an administrative action.
// It is built from verified token claims, never from request bodies.
type Actor struct {
	OperatorID string
	Name       string
	Role       model.OperatorRole
	SuperAdmin bool
}

// SystemActor is used for entries written by background jobs
var SystemActor = Actor{Name: "SYSTEM"}

func (a Actor) auditName() string {
	if a.Name == "" {
		return SystemActor.Name
	}
	return a.Name
}
