package model

import . "time"

type TestEvent struct {
	Name string `dto:""`
	At   Time   `dto:""`
}
