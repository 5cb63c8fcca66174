// Package inmemorytopology provides a thread-safe, in-memory implementation
// of the topologystore.Source interface. It is designed for topologies that
// fit comfortably in memory: those loaded from configuration files and those
// assembled by tests.
package inmemorytopology
