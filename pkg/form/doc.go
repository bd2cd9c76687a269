/*
Package form implements multi-step data collection on top of navigation paths.

A Schema lists the fields of a form. The Machine walks an identity through
them one step at a time, keeping the answers in a Session persisted through a
ports.Cache. Control buttons (skip, back, cancel, confirm) are ordinary
navigation tokens whose query carries the operation and the step they were
rendered for, so a tap on an outdated message is recognized and the current
step is shown again instead of being applied:

	start/feedback/feedback_new/?op=skip&s=1

Side effects happen only in Schema.Commit, which runs when the confirm control
of the summary screen is tapped.
*/
package form
