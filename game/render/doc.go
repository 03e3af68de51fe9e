// Package render turns puzzle state into drawing instructions for the
// decoding graph and hosts the optional decoder strategy that can
// recolor nodes by cluster and relabel the boundaries with a parity guess.
package render
