/*
Package domain contains the core domain models shared by the wayfinder packages.

It defines the inbound events delivered by the chat transport, the replies the
assistant sends back, and the records owned by the external collaborators
(identities, operator profiles, invitations, feedback requests, reviews).
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Event: One inbound message or button tap from a chat user.
  - Reply: Text plus an inline keyboard whose buttons carry navigation tokens.
  - Identity: A registered chat user.
  - OperatorProfile: An employee record granting a role, and through it a set of Permissions.
*/
package domain
