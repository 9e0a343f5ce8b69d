// Package model holds the data of approval processes: graph definitions,
// process instances with their tokens and tasks, business statuses, actors
// and the error taxonomy shared by every service.
package model
