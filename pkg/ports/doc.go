/*
Package ports defines the driven ports (interfaces) of the assistant.

These interfaces decouple the navigation core and the screens from storage,
caching and the chat transport, so the same handlers run against SQLite and
Telegram in production and against in-memory fakes in tests.

# Key Interfaces

  - IdentityStore, OperatorStore, InviteStore: who is talking and what they may do.
  - FeedbackStore, ReviewStore, DirectoryStore: business records and reference data.
  - Cache: short-lived key/value storage for form sessions and reference data.
  - Notifier: delivers replies; an Editor may also replace a previous message.
  - DistributedLocker: serializes one identity's events across replicas.
*/
package ports
