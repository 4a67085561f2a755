package model

import "time"

// ChangeNotice is a filesystem change observed under the source tree.
type ChangeNotice struct {
	Path      string
	Timestamp time.Time
}
