package service

import (
	"fmt"

	"aircarer/internal/model"
)

var validTransitions = map[model.TaskStatus][]model.TaskStatus{
	model.StatusInQueue:    {model.StatusInProgress},
	model.StatusInProgress: {model.StatusCompleted},
	model.StatusCompleted:  {},
}

// CanTransition checks if a request can move from one status to another
func CanTransition(from, to model.TaskStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StatusMessage is the sentence shown to the customer for a request
func StatusMessage(req model.Request) string {
	room := req.RoomType.Label()
	switch req.Status {
	case model.StatusInQueue:
		return fmt.Sprintf("Your cleaning request for %s is currently in queue. Please wait for a cleaner to accept your request.", room)
	case model.StatusInProgress:
		return fmt.Sprintf("A cleaner is in progress of your request for %s. Please wait for the cleaner's response.", room)
	case model.StatusCompleted:
		return fmt.Sprintf("Your cleaning request for %s has been completed. Thank you for using our service!", room)
	}
	return ""
}
