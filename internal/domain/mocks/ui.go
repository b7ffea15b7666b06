package mocks

import (
	"context"

	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/domain/ports"
)

// Prompter is a mock implementation of ports.Prompter.
type Prompter struct {
	Answer bool
	Err    error

	Asked      int
	Duplicates []entities.Relationship
}

var _ ports.Prompter = (*Prompter)(nil)

// ConfirmDuplicate records the duplicates shown and returns the canned answer.
func (m *Prompter) ConfirmDuplicate(_ context.Context, duplicates []entities.Relationship) (bool, error) {
	m.Asked++
	m.Duplicates = duplicates
	if m.Err != nil {
		return false, m.Err
	}
	return m.Answer, nil
}

// Alerter is a mock implementation of ports.Alerter.
type Alerter struct {
	Messages []string
}

var _ ports.Alerter = (*Alerter)(nil)

// Alert records the surfaced message.
func (m *Alerter) Alert(message string) {
	m.Messages = append(m.Messages, message)
}

// Window is a mock implementation of ports.Window.
type Window struct {
	Closed int
}

var _ ports.Window = (*Window)(nil)

// Close counts close requests.
func (m *Window) Close() {
	m.Closed++
}
