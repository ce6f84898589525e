// Package services содержит ошибки и сообщения сервиса аккаунтов.
package services

import (
	"errors"
	"fmt"
)

// Ошибки домена аккаунтов.
var (
	ErrEmailTaken           = errors.New("user with this email already exists")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrServiceUnavailable   = errors.New("service temporarily unavailable")
)

// Сообщения для пользователя.
const (
	MsgInvalidCredentials  = "Invalid email or password."
	MsgEmailTaken          = "This email address is already registered."
	MsgRegistrationSuccess = "Registration successful! Redirecting to login..."
	MsgEmailNotFound       = "This email address was not found in our system."
	MsgEmailNotFoundBanner = "Email address not found. Please check and try again."
	MsgServiceUnavailable  = "Service temporarily unavailable. Please try again later."
	MsgUnexpectedError     = "Something went wrong. Please try again."

	msgResetLinkSent = "If an account exists for %s, a password reset link has been sent."
)

// Переходы после успешной отправки.
const (
	RedirectAfterLogin        = "/dashboard"
	RedirectAfterRegistration = "/login"
)

// ResetLinkSent возвращает сообщение об отправке ссылки сброса на email.
func ResetLinkSent(email string) string {
	return fmt.Sprintf(msgResetLinkSent, email)
}
