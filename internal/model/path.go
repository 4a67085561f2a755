package model

// PathPair is the source tree and the replica it is mirrored onto.
type PathPair struct {
	Source  string
	Replica string
}
