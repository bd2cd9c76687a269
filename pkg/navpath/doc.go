/*
Package navpath encodes "where am I" into the opaque token carried by every
inline button.

A token is the breadcrumb from the root screen to the current screen followed
by an optional query block that belongs to the last segment only:

	start/feedback/requests/?page=2&view=open

The transport hands back exactly the token it was given, so the breadcrumb
doubles as the session history: "back" is truncation and needs no server-side
buffer. Paths are values; every operation returns a new Path.
*/
package navpath
