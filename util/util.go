// Package util contains various general utility functions used throughout
// the project
package util

// Waterfall executes a slice of functions until the first error returned. This
// error, if any, is returned to the caller.
func Waterfall(fns ...func() error) (err error) {
	for _, fn := range fns {
		err = fn()
		if err != nil {
			break
		}
	}
	return
}

// Parallel executes functions in parallel. The first error is returned, if
// any.
func Parallel(fns ...func() error) error {
	ch := make(chan error, len(fns))
	for i := range fns {
		fn := fns[i]
		go func() {
			ch <- fn()
		}()
	}

	var err error
	for range fns {
		if e := <-ch; e != nil && err == nil {
			err = e
		}
	}
	return err
}
