package async

// ErrAble runs fn in a goroutine and delivers its error on the returned
// channel, which is closed afterwards.
func ErrAble(fn func() error) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- fn()
		close(ch)
	}()
	return ch
}
