/*
Package observability turns dispatcher hooks into logs and Prometheus metrics.

Both producers return a domain.Hooks value; combine them with Hooks.Merge and
hand the result to the dispatcher, the guard chain and the form machines.
*/
package observability
