package consults

import "time"

// Clock programa el reset diferido tras un envío exitoso.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock usa time.AfterFunc.
func RealClock() Clock { return realClock{} }
