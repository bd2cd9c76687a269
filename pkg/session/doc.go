/*
Package session serializes the processing of events per chat identity.

The chat transport may deliver two updates of the same user concurrently
(a double tap, a webhook retry). The Manager guarantees they run one after the
other, locally through reference-counted mutexes and, when configured, across
replicas through a ports.DistributedLocker.
*/
package session
