// Package telegram connects the dispatcher to the Telegram Bot API.
//
// Client implements ports.Notifier and ports.Editor over the HTTP API.
// Inbound updates arrive either through the webhook handler (NewWebhook) or
// through long polling (Poller); both translate updates into domain.Event
// values and hand them to an EventHandler.
package telegram
