package services

import "fmt"

// Notification catalogue. The deployment is French-speaking; keeping every
// user-facing string here keeps the catalogue localizable without touching
// the classification logic.
const (
	msgQuotaExceeded        = "Quota OpenAI dépassé. Veuillez vérifier votre plan de facturation ou utiliser une nouvelle clé API."
	msgInvalidAPIKey        = "Clé API OpenAI invalide. Veuillez vérifier la configuration dans les paramètres."
	msgMissingConfiguration = "Configuration OpenAI manquante. Veuillez configurer votre clé API."
	msgGenericUnknown       = "Erreur lors de l'analyse de l'appel. Veuillez réessayer plus tard."

	msgEmailSent = "Email envoyé avec succès"
)

// NotificationMessage returns the toast text for a classified failure.
func NotificationMessage(c Classification) string {
	switch c.Class {
	case ClassQuotaExceeded:
		return msgQuotaExceeded
	case ClassInvalidAPIKey:
		return msgInvalidAPIKey
	case ClassMissingConfiguration:
		return msgMissingConfiguration
	case ClassGenericWithMessage:
		return fmt.Sprintf("Erreur lors de l'analyse de l'appel: %s", c.Message)
	default:
		return msgGenericUnknown
	}
}
