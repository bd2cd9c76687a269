/*
Package guard composes the cross-cutting checks that run before a screen
handler.

A Chain is an explicit, ordered list of named guards. Each guard inspects the
Request and either lets it continue or stops it with a reply; the first stop
wins and no later guard, nor the handler, runs. The chain itself is wrapped by
a containment layer that turns panics and unexpected errors into a logged
failure and a generic notice to the user, so a broken handler never takes the
transport loop down.

Typical order:

	chain := guard.NewChain(guard.WithLogger(logger)).
		Use("entry_gate", guard.EntryGate(identities, invites)).
		Use("access", guard.Access(identities, operators, forms))
*/
package guard
