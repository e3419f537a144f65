// Package config loads the session configuration a protocol runtime
// hands to this library: which party we are, where peers live, how
// many lanes to establish, and which transport variant to use.
//
// Peer and party discovery itself happens elsewhere; this package only
// parses and validates what discovery produced.
package config
