// Package mail определяет отправку писем.
package mail

import "context"

// Message - письмо одному получателю.
type Message struct {
	ToAddress string
	ToName    string
	Subject   string
	Text      string
	HTML      string
}

// Sender отправляет письма.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
