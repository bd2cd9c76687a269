/*
Package dispatch turns inbound chat events into screen renders.

For every event the Dispatcher resolves a navigation path (from the tapped
token, from the open form for free text, or the root screen), looks up the
route registered for the last segment, runs it through the guard chain and
delivers the reply. Events of one identity are serialized by a
session.Manager so the navigation core itself never locks.
*/
package dispatch
